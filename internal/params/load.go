package params

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// soccerNamespace - параметры могут лежать под ключом Soccer.
const soccerNamespace = "Soccer"

// LoadFile читает параметры из YAML-файла. Пустой путь - значения по умолчанию.
func LoadFile(path string) (ParameterSet, error) {
	if path == "" {
		ps := Defaults()
		return ps, ps.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ParameterSet{}, fmt.Errorf("read parameters: %w", err)
	}
	return Load(data)
}

// Load разбирает YAML с параметрами и разрешает их один раз в типизированный набор.
// Битые и неизвестные параметры дают ConfigurationError (Warnings) и значение по умолчанию.
// Фатальна только порча геометрии поля.
func Load(data []byte) (ParameterSet, error) {
	ps := Defaults()
	paramsLogger := logger.Component("params")

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ParameterSet{}, fmt.Errorf("parse parameters: %w", err)
	}
	if nested, ok := raw[soccerNamespace].(map[string]any); ok {
		raw = nested
	}

	// Сортируем ключи, чтобы предупреждения шли в стабильном порядке
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		e, ok := schemaIndex[key]
		if !ok {
			ps.warn(paramsLogger, &ConfigurationError{Key: key, Value: value, Reason: "unknown parameter, ignored"})
			continue
		}
		converted, err := e.convert(value)
		if err != nil {
			ps.warn(paramsLogger, &ConfigurationError{
				Key:    key,
				Value:  value,
				Reason: fmt.Sprintf("%v; using default %v", err, e.def),
			})
			continue
		}
		e.apply(&ps, converted)
	}

	if err := ps.Validate(); err != nil {
		return ParameterSet{}, err
	}

	paramsLogger.WithFields(logrus.Fields{
		"loaded":   len(keys),
		"warnings": len(ps.Warnings),
	}).Info("Parameter set resolved")
	return ps, nil
}

func (ps *ParameterSet) warn(log *logrus.Entry, err *ConfigurationError) {
	ps.Warnings = append(ps.Warnings, err)
	log.WithField("key", err.Key).Warn(err.Error())
}

// Validate проверяет геометрию поля. Ошибка оборачивает ErrInvalidGeometry.
func (ps ParameterSet) Validate() error {
	var problems []string

	positive := []struct {
		name  string
		value float64
	}{
		{"FieldLength", ps.FieldLength},
		{"FieldWidth", ps.FieldWidth},
		{"FieldHeight", ps.FieldHeight},
		{"GoalWidth", ps.GoalWidth},
		{"GoalDepth", ps.GoalDepth},
		{"GoalHeight", ps.GoalHeight},
		{"PenaltyLength", ps.PenaltyLength},
		{"PenaltyWidth", ps.PenaltyWidth},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %v", p.name, p.value))
		}
	}
	if ps.BorderSize < 0 {
		problems = append(problems, fmt.Sprintf("BorderSize must not be negative, got %v", ps.BorderSize))
	}
	if len(problems) == 0 {
		if ps.GoalWidth >= ps.FieldWidth {
			problems = append(problems, "GoalWidth must be smaller than FieldWidth")
		}
		if ps.PenaltyWidth >= ps.FieldWidth {
			problems = append(problems, "PenaltyWidth must be smaller than FieldWidth")
		}
		if ps.PenaltyLength >= ps.HalfLength() {
			problems = append(problems, "PenaltyLength must be smaller than half the FieldLength")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidGeometry, strings.Join(problems, "; "))
	}
	return nil
}

// Marshal выгружает набор в YAML в порядке схемы.
func Marshal(ps ParameterSet) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range schema {
		var val yaml.Node
		if err := val.Encode(e.value(&ps)); err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.name, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.name},
			&val,
		)
	}
	return yaml.Marshal(doc)
}
