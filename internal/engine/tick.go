package engine

import (
	"fmt"

	"autoref-server/internal/domain"
	"autoref-server/internal/engine/handlers"
	"autoref-server/internal/params"
	"autoref-server/internal/systems"

	"github.com/sirupsen/logrus"
)

// tick - один вызов Advance: рабочая копия матча и накопитель результата.
// Реализует handlers.Referee для команд тренера.
type tick struct {
	c    *PhaseController
	m    *domain.Match
	snap *domain.Snapshot
	res  *TickResult
	dt   float64
}

func newTick(c *PhaseController, snap *domain.Snapshot, res *TickResult) *tick {
	t := &tick{
		c:    c,
		m:    c.match.Clone(),
		snap: snap,
		res:  res,
	}
	if t.m.Started {
		t.dt = snap.Time - t.m.LastTime
	}
	t.m.Tick = snap.Tick
	return t
}

// syncPlayers переносит кинематику игроков из кадра в матч.
// Новички проходят проверку состава, пропавшие из кадра удаляются.
func (t *tick) syncPlayers() {
	seen := make(map[domain.PlayerID]bool, len(t.snap.Players))
	for _, f := range t.snap.Players {
		seen[f.ID] = true
		p, ok := t.m.Players[f.ID]
		if !ok {
			if t.c.rejected[f.ID] {
				continue
			}
			if err := CheckRoster(t.m.Players, f, t.c.params); err != nil {
				t.c.rejected[f.ID] = true
				t.c.log.WithError(err).WithField("player", f.ID.String()).Warn("Player rejected")
				continue
			}
			p = &domain.Player{ID: f.ID}
			t.m.Players[f.ID] = p
			t.c.log.WithFields(logrus.Fields{
				"player":     f.ID.String(),
				"robot_type": f.RobotType,
				"goalie":     f.Goalie,
			}).Info("Player joined")
		}
		p.Goalie = f.Goalie
		p.RobotType = f.RobotType
		p.Pos = f.Pos
		p.Vel = f.Vel
		p.Yaw = f.Yaw
		p.Posture = f.Posture
	}

	for id := range t.m.Players {
		if !seen[id] {
			delete(t.m.Players, id)
			t.c.log.WithField("player", id.String()).Info("Player left")
		}
	}
}

func (t *tick) applyCommand(cmd domain.InternalCommand) {
	outcome := CommandOutcome{Command: cmd}

	handler, ok := t.c.handlers[cmd.Type]
	if !ok {
		outcome.Err = fmt.Errorf("unknown command %q", cmd.Type.String())
	} else {
		result, err := handler(handlers.Context{Referee: t, Source: cmd.Source}, cmd.Payload)
		outcome.Msg = result.Msg
		outcome.Err = err
	}

	entry := t.c.log.WithFields(logrus.Fields{
		"command": cmd.Type.String(),
		"source":  cmd.Source,
		"phase":   t.m.Phase.String(),
	})
	if outcome.Err != nil {
		entry.WithError(outcome.Err).Warn("Trainer command rejected")
	} else {
		entry.Info(outcome.Msg)
	}
	t.res.Commands = append(t.res.Commands, outcome)
}

// step продвигает матч на один кадр в зависимости от фазы.
func (t *tick) step() {
	m, ps := t.m, t.c.params

	switch m.Phase {
	case domain.PhasePreKickOff, domain.PhaseHalfTime:
		m.WaitElapsed += t.dt
		t.trackIdleBall()
		if ps.AutomaticKickOff && m.WaitElapsed >= ps.WaitBeforeKickOff {
			if err := t.startKickOff(domain.SideNone); err != nil {
				t.c.log.WithError(err).Error("Automatic kick off failed")
			}
		}

	case domain.PhasePlaying, domain.PhasePaused:
		t.playStep()

	case domain.PhaseFullTime:
		t.trackIdleBall()
		if ps.PenaltyShootout && m.Score.IsDraw() {
			t.enterShootout()
		}
	}
}

// trackIdleBall - мяч вне игры: только кинематика, без касаний.
func (t *tick) trackIdleBall() {
	t.m.Ball.Pos = t.snap.Ball.Pos
	t.m.Ball.Vel = t.snap.Ball.Vel
	t.m.Ball.InPlay = false
}

func (t *tick) playStep() {
	m := t.m
	m.Elapsed += t.dt

	ball := t.c.tracker.Update(m, t.snap)
	if ball.Inconsistent {
		t.warn(fmt.Errorf("%w: goal detected at both ends in tick %d", ErrStateInconsistency, t.snap.Tick))
		ball = domain.BallState{Ball: m.Ball, Touch: m.Touch}
	} else {
		m.Ball = ball.Ball
		m.Touch = ball.Touch
	}

	for _, v := range t.c.standing.Update(m.SortedPlayers(), t.dt, m.Elapsed) {
		p := m.Players[v.Player]
		t.addViolation(v)
		t.relocate(v.Player, t.c.field.TouchLinePoint(m.DefendedEnd(v.Player.Team), p.Pos.X), p.Yaw, v.Kind)
	}

	restartBefore := m.Restart
	if m.Phase == domain.PhasePaused {
		t.resumeIfDue()
	}
	if m.Phase == domain.PhasePlaying {
		t.playOn(ball)
	}
	if m.Phase == domain.PhasePlaying {
		t.chargingStep()
	}
	if m.Phase.ClockRunning() {
		t.positionalStep(ball, restartBefore)
	}
	t.checkHalfEnd()
}

// playOn: ожидание касания после стандарта и выход мяча из игры.
func (t *tick) playOn(ball domain.BallState) {
	m, ps := t.m, t.c.params

	if r := m.Restart; r != nil && r.AwaitingTouch {
		if ball.NewTouch() {
			t.c.log.WithFields(logrus.Fields{
				"restart": r.Kind.String(),
				"toucher": ball.Touches[0].String(),
			}).Debug("Restart taken")
			m.Restart = nil
		} else if m.Elapsed-r.Since >= ps.RuleDropBallTime {
			t.dropBall(t.c.field.Clamp(m.Ball.Pos))
			return
		}
	}

	// Пока стандарт не разыгран, мяч мог еще не доставлен на точку: выходы игнорируем
	if ball.Out == domain.OutGoal || (m.Restart == nil && ball.Out != domain.OutNone) {
		t.ballOut(ball)
	}
}

func (t *tick) ballOut(ball domain.BallState) {
	m, ps, f := t.m, t.c.params, t.c.field
	last := m.Ball.LastTouchedBy

	var d domain.Decision
	switch ball.Out {
	case domain.OutGoal:
		t.goal(ball.GoalEnd)
		return

	case domain.OutSideLine:
		if last.IsZero() {
			t.dropBall(f.Clamp(ball.ExitPos))
			return
		}
		d = t.setPiece(domain.DecisionThrowIn, last.Team.Opponent(), ball.ExitPos, ps.RuleKickInPauseTime, domain.ViolationOutOfBounds)

	case domain.OutGoalLine:
		if last.IsZero() {
			t.dropBall(f.Clamp(ball.ExitPos))
			return
		}
		defender := m.GoalOwner(ball.GoalEnd)
		if last.Team == defender {
			d = t.setPiece(domain.DecisionCornerKick, defender.Opponent(), f.Corner(ball.GoalEnd, ball.ExitPos.Y), ps.RuleKickInPauseTime, domain.ViolationOutOfBounds)
		} else {
			d = t.setPiece(domain.DecisionGoalKick, defender, f.GoalKickSpot(ball.GoalEnd, ps.GoalKickDist), ps.RuleKickInPauseTime, domain.ViolationOutOfBounds)
		}

	default:
		return
	}

	// Нарушитель - последний коснувшийся мяча
	t.addViolation(domain.RuleViolation{
		Kind:     domain.ViolationOutOfBounds,
		Player:   last,
		Time:     m.Elapsed,
		Pos:      ball.ExitPos,
		Decision: &d,
	})
}

func (t *tick) chargingStep() {
	m, ps := t.m, t.c.params
	for _, v := range t.c.charging.Update(m.Players, t.snap.Contacts, m.Ball, m.Elapsed) {
		// Первый фол тика дает штрафной, остальные - только уведомление
		if m.Phase == domain.PhasePlaying && m.Restart == nil {
			spot := t.c.field.Clamp(v.Pos)
			d := t.setPiece(domain.DecisionFreeKick, v.Victim.Team, spot, ps.RuleKickInPauseTime, domain.ViolationCharging)
			v.Decision = &d
			if off, ok := m.Players[v.Player]; ok {
				target := systems.RadialAway(spot, off.Pos, ps.FreeKickMoveDist, m.DefendedEnd(off.ID.Team))
				t.relocate(off.ID, target, off.Yaw, domain.ViolationCharging)
			}
		}
		t.addViolation(v)
	}
}

func (t *tick) positionalStep(ball domain.BallState, restartBefore *domain.Restart) {
	m, ps := t.m, t.c.params

	in := systems.PositionalInput{
		Players: m.SortedPlayers(),
		Ball:    ball,
		Swapped: m.Swapped,
		Time:    m.Elapsed,
	}
	// В паузе после гола точки стандарта нет
	if m.Restart != nil && m.Restart.Kind != domain.DecisionGoal {
		r := *m.Restart
		in.Restart = &r
	}

	for _, v := range t.c.positional.Evaluate(in) {
		if v.Kind == domain.ViolationOffside {
			if m.Phase == domain.PhasePlaying && restartBefore == nil && m.Restart == nil {
				d := t.setPiece(domain.DecisionFreeKick, v.Player.Team.Opponent(), t.c.field.Clamp(v.Pos), ps.RuleKickInPauseTime, domain.ViolationOffside)
				v.Decision = &d
				t.addViolation(v)
			}
			continue
		}
		t.addViolation(v)
		if p, ok := m.Players[v.Player]; ok {
			t.relocate(v.Player, t.c.positional.RelocationTarget(v, in), p.Yaw, v.Kind)
		}
	}
}

// resumeIfDue завершает паузу: после гола - начальный удар пропустившей команды,
// иначе игра идет, стандарт ждет касания.
func (t *tick) resumeIfDue() {
	m := t.m
	r := m.Restart
	if r == nil {
		t.setPhase(domain.PhasePlaying)
		return
	}
	if m.Elapsed < r.ResumeAt {
		return
	}
	if r.Kind == domain.DecisionGoal {
		t.kickOff(r.Team)
		return
	}
	r.AwaitingTouch = true
	r.Since = m.Elapsed
	t.setPhase(domain.PhasePlaying)
}

func (t *tick) checkHalfEnd() {
	m, ps := t.m, t.c.params
	if !m.Phase.ClockRunning() || m.Elapsed < float64(m.Half)*ps.RuleHalfTime {
		return
	}

	m.Restart = nil
	m.Touch = domain.TouchState{}
	m.Ball.LastTouchedBy = domain.NoPlayer
	t.c.charging.Reset()

	if m.Half < ps.HalfCount() {
		t.decide(domain.DecisionHalfTime, domain.SideNone, domain.Vec3{}, 0)
		m.Half++
		m.WaitElapsed = 0
		if ps.ChangeSidesInSecondHalf {
			m.Swapped = !m.Swapped
		}
		t.setPhase(domain.PhaseHalfTime)
		return
	}

	t.decide(domain.DecisionFullTime, domain.SideNone, domain.Vec3{}, 0)
	t.setPhase(domain.PhaseFullTime)
	if ps.AutomaticQuit && !(ps.PenaltyShootout && m.Score.IsDraw()) {
		t.res.Quit = true
	}
}

func (t *tick) enterShootout() {
	t.decide(domain.DecisionPenaltyShootout, t.m.FirstKickOff, domain.Vec3{}, 0)
	t.setPhase(domain.PhasePenaltyShootout)
	if t.c.params.AutomaticQuit {
		t.res.Quit = true
	}
}

// --- Решения ---

func (t *tick) decide(kind domain.DecisionKind, team domain.Side, pos domain.Vec3, pause float64) domain.Decision {
	return t.announce(domain.Decision{Kind: kind, Pos: pos, Team: team, Pause: pause})
}

func (t *tick) announce(d domain.Decision) domain.Decision {
	d.Tick = t.m.Tick
	d.Time = t.m.Elapsed
	t.res.Decisions = append(t.res.Decisions, d)
	entry := t.c.log.WithFields(logrus.Fields{
		"tick":  d.Tick,
		"time":  d.Time,
		"kind":  d.Kind.String(),
		"team":  d.Team.String(),
		"pos":   fmt.Sprintf("(%.2f, %.2f)", d.Pos.X, d.Pos.Y),
		"pause": d.Pause,
	})
	if d.Cause != domain.ViolationUnknown {
		entry = entry.WithField("cause", d.Cause.String())
	}
	entry.Info("Decision")
	return d
}

// setPiece назначает стандарт. С паузой - фаза Paused, без паузы - сразу ждем касания.
// cause - нарушение, из-за которого назначен стандарт (ViolationUnknown, если его нет).
func (t *tick) setPiece(kind domain.DecisionKind, team domain.Side, pos domain.Vec3, pause float64, cause domain.ViolationKind) domain.Decision {
	m := t.m
	d := t.announce(domain.Decision{Kind: kind, Pos: pos, Team: team, Pause: pause, Cause: cause})
	m.Restart = &domain.Restart{
		Kind:     kind,
		Team:     team,
		Pos:      pos,
		ResumeAt: m.Elapsed + pause,
	}
	if pause > 0 {
		t.setPhase(domain.PhasePaused)
	} else {
		m.Restart.AwaitingTouch = true
		m.Restart.Since = m.Elapsed
		t.setPhase(domain.PhasePlaying)
	}
	return d
}

func (t *tick) goal(end domain.Side) {
	m, ps := t.m, t.c.params
	scorer := m.GoalOwner(end).Opponent()

	m.Score = m.Score.Add(scorer)
	t.res.ScoreChanged = true

	center := t.c.field.GoalCenter(end)
	t.decide(domain.DecisionGoal, scorer, center, ps.RuleGoalPauseTime)
	m.Restart = &domain.Restart{
		Kind:     domain.DecisionGoal,
		Team:     scorer.Opponent(), // начинает пропустившая команда
		Pos:      center,
		ResumeAt: m.Elapsed + ps.RuleGoalPauseTime,
	}
	m.Touch = domain.TouchState{}
	m.Ball.LastTouchedBy = domain.NoPlayer
	t.setPhase(domain.PhasePaused)
}

// kickOff - начальный удар с центра, пауза нулевая.
func (t *tick) kickOff(team domain.Side) {
	m := t.m
	t.decide(domain.DecisionKickOff, team, domain.Vec3{}, 0)
	m.Restart = &domain.Restart{
		Kind:          domain.DecisionKickOff,
		Team:          team,
		ResumeAt:      m.Elapsed,
		AwaitingTouch: true,
		Since:         m.Elapsed,
	}
	m.Touch = domain.TouchState{}
	m.Ball.LastTouchedBy = domain.NoPlayer
	m.WaitElapsed = 0
	t.setPhase(domain.PhasePlaying)
}

// dropBall - спорный мяч: стандарт снят, игра продолжается.
func (t *tick) dropBall(pos domain.Vec3) {
	m := t.m
	t.decide(domain.DecisionDropBall, domain.SideNone, pos, 0)
	m.Restart = &domain.Restart{
		Kind:          domain.DecisionDropBall,
		Pos:           pos,
		ResumeAt:      m.Elapsed,
		AwaitingTouch: true,
		Since:         m.Elapsed,
	}
	m.Touch = domain.TouchState{}
	m.Ball.LastTouchedBy = domain.NoPlayer
	t.setPhase(domain.PhasePlaying)
}

func (t *tick) setPhase(to domain.Phase) {
	from := t.m.Phase
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		t.c.log.WithFields(logrus.Fields{
			"from": from.String(),
			"to":   to.String(),
		}).Error("Illegal phase transition ignored")
		return
	}
	t.m.Phase = to
	t.res.Transitions = append(t.res.Transitions, PhaseTransition{From: from, To: to})
	t.c.log.WithFields(logrus.Fields{
		"from": from.String(),
		"to":   to.String(),
		"time": t.m.Elapsed,
		"half": t.m.Half,
	}).Info("Phase changed")
}

func (t *tick) addViolation(v domain.RuleViolation) {
	t.res.Violations = append(t.res.Violations, v)
}

func (t *tick) warn(err error) {
	t.res.Warnings = append(t.res.Warnings, err)
	t.c.log.WithError(err).Warn("Tick data rejected")
}

// relocate - перестановка игрока с шумом (BeamNoiseXY, BeamNoiseAngle).
// Шум берется из генератора матча в порядке вызовов, поэтому воспроизводим.
func (t *tick) relocate(id domain.PlayerID, pos domain.Vec3, yaw float64, reason domain.ViolationKind) {
	ps := t.c.params
	target := t.c.field.Clamp(domain.Vec3{
		X: pos.X + t.c.noise(ps.BeamNoiseXY),
		Y: pos.Y + t.c.noise(ps.BeamNoiseXY),
	})
	yaw = domain.NormalizeAngle(yaw + t.c.noise(ps.BeamNoiseAngle))

	if p, ok := t.m.Players[id]; ok {
		p.Pos = target
		p.Vel = domain.Vec3{}
		p.Yaw = yaw
	}
	t.res.Relocations = append(t.res.Relocations, domain.Relocation{
		Player: id,
		Pos:    target,
		Yaw:    yaw,
		Reason: reason,
	})
}

func (c *PhaseController) noise(amplitude float64) float64 {
	if amplitude <= 0 {
		return 0
	}
	return (c.rng.Float64()*2 - 1) * amplitude
}

// --- handlers.Referee ---

func (t *tick) Match() *domain.Match { return t.m }

func (t *tick) Params() params.ParameterSet { return t.c.params }

// startKickOff - начальный удар по запросу. В начале тайма бьет команда по жеребьевке
// (во втором тайме - другая), после гола - пропустившая.
func (t *tick) startKickOff(requested domain.Side) error {
	m := t.m
	var team domain.Side
	switch {
	case m.Phase.AwaitingKickOff():
		team = m.FirstKickOff
		if m.Half%2 == 0 {
			team = team.Opponent()
		}
		if requested != domain.SideNone && m.Phase == domain.PhasePreKickOff {
			m.FirstKickOff = requested
		}
	case t.goalPause():
		team = m.Restart.Team
	default:
		return fmt.Errorf("%w: kick off requested in phase %s", ErrStateInconsistency, m.Phase)
	}
	if requested != domain.SideNone {
		team = requested
	}
	t.kickOff(team)
	return nil
}

func (t *tick) goalPause() bool {
	return t.m.Phase == domain.PhasePaused && t.m.Restart != nil && t.m.Restart.Kind == domain.DecisionGoal
}

// beamingAllowed - расстановка разрешена до начального удара и в паузе после гола.
func (t *tick) beamingAllowed() bool {
	return t.m.Phase.AwaitingKickOff() || t.goalPause()
}

func (t *tick) KickOff(team domain.Side) error {
	return t.startKickOff(team)
}

func (t *tick) Restart(kind domain.DecisionKind, team domain.Side, pos domain.Vec3) error {
	m := t.m
	if !m.Phase.ClockRunning() || t.goalPause() {
		return fmt.Errorf("%w: restart requested in phase %s", ErrStateInconsistency, m.Phase)
	}
	if !kind.IsSetPiece() || kind == domain.DecisionKickOff {
		return fmt.Errorf("%w: %s is not a restart", ErrStateInconsistency, kind)
	}
	if team == domain.SideNone {
		return fmt.Errorf("%w: restart without a team", ErrStateInconsistency)
	}
	t.setPiece(kind, team, t.c.field.Clamp(pos), t.c.params.RuleKickInPauseTime, domain.ViolationUnknown)
	return nil
}

func (t *tick) DropBall(pos *domain.Vec3) error {
	m := t.m
	if !m.Phase.ClockRunning() || t.goalPause() {
		return fmt.Errorf("%w: drop ball requested in phase %s", ErrStateInconsistency, m.Phase)
	}
	at := m.Ball.Pos
	if pos != nil {
		at = *pos
	}
	t.dropBall(t.c.field.Clamp(at))
	return nil
}

func (t *tick) Beam(id domain.PlayerID, pos domain.Vec3, yaw float64) error {
	m := t.m
	if !t.beamingAllowed() {
		return fmt.Errorf("%w: beaming is not allowed in phase %s", ErrStateInconsistency, m.Phase)
	}
	if _, ok := m.Players[id]; !ok {
		return fmt.Errorf("%w: unknown player %s", ErrStateInconsistency, id)
	}
	// До начального удара расстановка только на своей половине
	if m.Phase.AwaitingKickOff() && systems.Depth(pos, m.DefendedEnd(id.Team)) < 0 {
		pos.X = -pos.X
	}
	t.relocate(id, pos, yaw, domain.ViolationUnknown)
	return nil
}

func (t *tick) Abort() {
	t.c.Abort()
}
