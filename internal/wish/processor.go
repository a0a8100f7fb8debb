package wish

import (
	"context"
	"errors"
	"time"

	"wishbook/internal/channel"
	"wishbook/internal/genai"
	"wishbook/internal/logger"
	"wishbook/internal/render"
)

type Generator interface {
	GenerateWish(ctx context.Context, in genai.Input) (string, error)
}

type Renderer interface {
	Render(platform, occasion, recipientName, text string) (render.RenderedMessage, error)
}

type Enroller interface {
	Enroll(fireAt time.Time, wishID uint64) string
}

// Processor is the scheduler callback: it regenerates text, renders,
// delivers, records the outcome, and enrolls the successor for recurring
// wishes. It owns all status transitions out of "pending".
type Processor struct {
	Store    *Store
	Gen      Generator
	Renderer Renderer
	Adapters map[string]channel.Adapter
	Sched    Enroller

	GenerateTimeout time.Duration
	DeliveryTimeout time.Duration
}

// Process handles one fired job. It does not return until
// generation+render+send have completed or failed. Errors returned here have
// already been recorded on the wish; the scheduler only logs them.
func (p *Processor) Process(ctx context.Context, wishID uint64) error {
	w, err := p.Store.Load(ctx, wishID)
	if errors.Is(err, ErrNotFound) {
		// Record deleted after the job was enrolled. Nothing to do.
		return nil
	}
	if err != nil {
		return err
	}

	// Idempotency guard: a duplicate fire against an already-processed
	// record is a no-op.
	if w.Status != StatusPending {
		logger.Debug("skipping non-pending wish", "wish_id", w.ID, "status", w.Status)
		return nil
	}

	logger.Info("processing scheduled wish", "wish_id", w.ID, "recipient", w.RecipientName, "platform", w.Platform)

	gctx, cancel := p.withTimeout(ctx, p.GenerateTimeout)
	text, err := p.Gen.GenerateWish(gctx, genai.Input{
		Occasion:      w.Occasion,
		RecipientName: w.RecipientName,
		Tone:          w.Tone,
		ExtraDetails:  w.ExtraDetails,
	})
	cancel()
	if err != nil {
		p.fail(ctx, w.ID, err.Error())
		return err
	}

	msg, err := p.Renderer.Render(w.Platform, w.Occasion, w.RecipientName, text)
	if err != nil {
		p.fail(ctx, w.ID, err.Error())
		return err
	}

	adapter, ok := p.Adapters[w.Platform]
	if !ok {
		err := errors.New("no delivery adapter for platform " + w.Platform)
		p.fail(ctx, w.ID, err.Error())
		return err
	}

	dest, err := w.Destination()
	if err != nil {
		p.fail(ctx, w.ID, err.Error())
		return err
	}

	dctx, cancel := p.withTimeout(ctx, p.DeliveryTimeout)
	result, sendErr := adapter.Send(dctx, msg, dest)
	cancel()

	status := StatusSent
	lastError := ""
	switch result {
	case channel.Skipped:
		status = StatusSkipped
	case channel.Failed:
		status = StatusFailed
		if sendErr != nil {
			lastError = sendErr.Error()
		}
	}

	// Re-read immediately before commit: the record may have been
	// superseded while we were generating and sending.
	cur, err := p.Store.Load(ctx, wishID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if cur.Status != StatusPending {
		return nil
	}

	cur.GeneratedText = text
	cur.Status = status
	cur.LastError = lastError
	if err := p.Store.Update(ctx, cur); err != nil {
		return err
	}

	if sendErr != nil {
		return sendErr
	}

	if status == StatusSent && cur.Recurrence != RecurrenceNone {
		p.enrollSuccessor(ctx, cur)
	}
	return nil
}

// MarkFailed records a failure on behalf of the scheduler when the callback
// itself could not (a panic escaped it). Only pending records transition.
func (p *Processor) MarkFailed(wishID uint64, reason string) {
	p.fail(context.Background(), wishID, reason)
}

func (p *Processor) fail(ctx context.Context, wishID uint64, reason string) {
	w, err := p.Store.Load(ctx, wishID)
	if err != nil {
		logger.Error("cannot mark wish failed", "wish_id", wishID, "error", err)
		return
	}
	if w.Status != StatusPending {
		return
	}
	w.Status = StatusFailed
	w.LastError = reason
	if err := p.Store.Update(ctx, w); err != nil {
		logger.Error("cannot mark wish failed", "wish_id", wishID, "error", err)
	}
}

// enrollSuccessor continues the recurrence chain. Any error here is logged
// and swallowed: a broken chain must not undo the fired wish's completion.
func (p *Processor) enrollSuccessor(ctx context.Context, w *Wish) {
	next, err := NextDue(w.DueAt, w.Recurrence)
	if err != nil {
		logger.Error("recurrence computation failed, chain ends", "wish_id", w.ID, "error", err)
		return
	}

	succ := Successor(w, next)
	if err := p.Store.Create(ctx, succ); err != nil {
		logger.Error("failed to create successor wish, chain ends", "wish_id", w.ID, "error", err)
		return
	}
	p.Sched.Enroll(next, succ.ID)
	logger.Info("recurring wish re-enrolled", "wish_id", w.ID, "successor_id", succ.ID, "due_at", next)
}

func (p *Processor) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
