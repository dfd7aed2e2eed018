package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrQueueFull - очередь судьи переполнена, кадр или команда отброшены.
var ErrQueueFull = errors.New("referee queue is full")

// FrameRecorder пишет примененные тики (запись матча).
type FrameRecorder interface {
	Append(frame domain.ReplayFrame) error
	Close() error
}

// Referee - цикл судьи одного матча. Владеет PhaseController:
// кадры физики и команды тренера приходят через каналы и применяются строго по очереди.
type Referee struct {
	ID   string
	Seed int64

	ctrl      *PhaseController
	publisher *DecisionPublisher
	recorder  FrameRecorder

	// Каналы коммуникации
	SnapshotChan chan *domain.Snapshot       // Кадры физики
	CommandChan  chan domain.InternalCommand // Команды тренера
	abortChan    chan struct{}

	state atomic.Pointer[domain.Match] // последнее закоммиченное состояние для чтения извне
	done  chan struct{}
	log   *logrus.Entry
}

// NewReferee создает матч. Зерно берется из RandomSeed, при 0 - от времени.
func NewReferee(ps params.ParameterSet, sink Sink, queueSize int) *Referee {
	seed := int64(ps.RandomSeed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return newReferee(uuid.NewString(), ps, seed, sink, queueSize)
}

func newReferee(id string, ps params.ParameterSet, seed int64, sink Sink, queueSize int) *Referee {
	if queueSize <= 0 {
		queueSize = 1
	}
	r := &Referee{
		ID:           id,
		Seed:         seed,
		ctrl:         NewPhaseController(id, ps, seed),
		publisher:    NewDecisionPublisher(id, ps, sink),
		SnapshotChan: make(chan *domain.Snapshot, queueSize),
		CommandChan:  make(chan domain.InternalCommand, queueSize),
		abortChan:    make(chan struct{}, 1),
		done:         make(chan struct{}),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "referee",
			"match_id":  id,
		}),
	}
	r.state.Store(r.ctrl.State())
	return r
}

// AttachRecorder подключает запись матча. Вызывать до Run.
func (r *Referee) AttachRecorder(rec FrameRecorder) {
	r.recorder = rec
}

// Params набор параметров матча.
func (r *Referee) Params() params.ParameterSet { return r.ctrl.Params() }

// Run - цикл судьи. Команды копятся и применяются в начале следующего тика.
// Возвращается при отмене ctx, прерывании матча или AutomaticQuit.
func (r *Referee) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.closeRecorder()

	r.log.WithField("seed", r.Seed).Info("Referee loop started")

	var pending []domain.InternalCommand
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Referee loop stopped")
			return ctx.Err()

		case <-r.abortChan:
			res := r.ctrl.CommitAbort()
			if res.Applied {
				r.record(domain.ReplayFrame{Abort: true})
			}
			r.finishTick(res)
			return nil

		case cmd := <-r.CommandChan:
			pending = append(pending, cmd)

		case snap := <-r.SnapshotChan:
			var stop bool
			pending, stop = r.process(snap, pending)
			if stop {
				return nil
			}
		}
	}
}

// process применяет кадр с накопленными командами. Возвращает команды,
// которые ждут следующего кадра, и признак остановки цикла.
// Пропущенный кадр (битый, время не идет) команды не потребляет.
func (r *Referee) process(snap *domain.Snapshot, pending []domain.InternalCommand) ([]domain.InternalCommand, bool) {
	res := r.ctrl.Advance(snap, pending)
	if !res.Applied {
		if len(pending) > 0 {
			r.log.WithFields(logrus.Fields{
				"commands": len(pending),
				"reason":   res.Skipped,
			}).Debug("Frame skipped, commands carried over")
		}
		r.finishTick(res)
		return pending, res.Phase == domain.PhaseAborted
	}

	if res.Phase == domain.PhaseAborted {
		// тик прерван целиком, кроме прерывания ничего не закоммичено
		r.record(domain.ReplayFrame{Abort: true})
		r.finishTick(res)
		return nil, true
	}
	r.record(domain.ReplayFrame{Snapshot: *snap, Commands: pending})
	r.finishTick(res)

	if res.Quit {
		r.log.Info("Automatic quit")
		return nil, true
	}
	return nil, false
}

func (r *Referee) record(frame domain.ReplayFrame) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Append(frame); err != nil {
		r.log.WithError(err).Error("Failed to record frame")
	}
}

func (r *Referee) finishTick(res TickResult) {
	r.publisher.Publish(res)
	r.state.Store(r.ctrl.State())
}

func (r *Referee) closeRecorder() {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Close(); err != nil {
		r.log.WithError(err).Error("Failed to close match recording")
	}
}

// SubmitSnapshot ставит кадр в очередь. Не блокирует: при переполнении кадр теряется.
func (r *Referee) SubmitSnapshot(snap *domain.Snapshot) error {
	select {
	case r.SnapshotChan <- snap:
		return nil
	default:
		r.log.Warn("Snapshot queue full, frame dropped")
		return ErrQueueFull
	}
}

// SubmitCommand ставит команду тренера в очередь. Не блокирует.
func (r *Referee) SubmitCommand(cmd domain.InternalCommand) error {
	select {
	case r.CommandChan <- cmd:
		return nil
	default:
		r.log.WithField("command", cmd.Type.String()).Warn("Command queue full, command dropped")
		return ErrQueueFull
	}
}

// Abort прерывает матч. Безопасно из любой горутины.
func (r *Referee) Abort() {
	r.ctrl.Abort()
	select {
	case r.abortChan <- struct{}{}:
	default:
	}
}

// State копия последнего закоммиченного состояния.
func (r *Referee) State() *domain.Match {
	return r.state.Load().Clone()
}

// Done закрывается после выхода из Run.
func (r *Referee) Done() <-chan struct{} {
	return r.done
}
