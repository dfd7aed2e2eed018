package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"autoref-server/internal/domain"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	MagicHeader string = `ARRP` // 4 байта
	Version1    uint32 = 1
)

// ReplayFileHeader - точное представление заголовка файла записи.
// binary.Write пишет его целиком: тут только массивы и числа.
// Следом идут ID матча (IDLen байт) и YAML параметров (ParamsLen байт),
// затем кадры до конца файла.
type ReplayFileHeader struct {
	Magic     [4]byte // 4 байта
	Version   uint32  // 4 байта
	Seed      int64   // 8 байт
	Timestamp int64   // 8 байт
	IDLen     uint16  // 2 байта
	ParamsLen uint32  // 4 байта
}

// Каждый кадр: uint32 длина + msgpack(domain.ReplayFrame).
const maxFrameLen = 16 << 20

type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	return &ReplayService{SaveDir: dir}, nil
}

// Recorder пишет кадры в файл по мере игры. Безопасен для одного писателя,
// Close можно вызывать повторно.
type Recorder struct {
	mu     sync.Mutex
	path   string
	f      *os.File
	w      *bufio.Writer
	frames int
	closed bool
	log    *logrus.Entry
}

// Create открывает новую запись и сразу пишет заголовок.
func (s *ReplayService) Create(session *domain.ReplaySession) (*Recorder, error) {
	filename := fmt.Sprintf("match_%s_%d.arrp", session.MatchID, session.Timestamp)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := writeHeader(w, session); err != nil {
		_ = f.Close()
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "storage",
		"path":      path,
	}).Info("Match recording started")

	return &Recorder{
		path: path,
		f:    f,
		w:    w,
		log:  logger.Component("storage").WithField("path", path),
	}, nil
}

// Path путь к файлу записи.
func (r *Recorder) Path() string { return r.path }

func (r *Recorder) Append(frame domain.ReplayFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recording %s is closed", r.path)
	}
	if err := writeFrame(r.w, frame); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	flushErr := r.w.Flush()
	closeErr := r.f.Close()
	r.log.WithField("frames", r.frames).Info("Match recording closed")
	if flushErr != nil {
		return fmt.Errorf("flush recording: %w", flushErr)
	}
	return closeErr
}

// Save пишет готовую сессию одним файлом.
func (s *ReplayService) Save(session *domain.ReplaySession) (string, error) {
	rec, err := s.Create(session)
	if err != nil {
		return "", err
	}
	for _, frame := range session.Frames {
		if err := rec.Append(frame); err != nil {
			_ = rec.Close()
			return "", err
		}
	}
	return rec.Path(), rec.Close()
}

func writeBinary(w io.Writer, s *domain.ReplaySession) error {
	if err := writeHeader(w, s); err != nil {
		return err
	}
	for _, frame := range s.Frames {
		if err := writeFrame(w, frame); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, s *domain.ReplaySession) error {
	idBytes := []byte(s.MatchID)
	if len(idBytes) > math.MaxUint16 {
		return fmt.Errorf("match id too long: %d", len(idBytes))
	}

	header := ReplayFileHeader{
		Version:   Version1,
		Seed:      s.Seed,
		Timestamp: s.Timestamp,
		IDLen:     uint16(len(idBytes)),
		ParamsLen: uint32(len(s.Params)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(idBytes); err != nil {
		return err
	}
	if len(s.Params) > 0 {
		if _, err := w.Write(s.Params); err != nil {
			return err
		}
	}
	return nil
}

func writeFrame(w io.Writer, frame domain.ReplayFrame) error {
	body, err := msgpack.Marshal(&frame)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Snapshot.Tick, err)
	}
	if len(body) > maxFrameLen {
		return fmt.Errorf("frame too long: %d", len(body))
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(body))); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}
