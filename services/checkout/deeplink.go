package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"parkly/models"
	"parkly/utils"

	"go.uber.org/zap"
)

// Outcome classifies a checkout deep link.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeCancel  Outcome = "cancel"
	OutcomeOther   Outcome = "other"
)

// ParseCallback classifies a callback URL and extracts the session id
// from its query string. Unparseable URLs classify as OutcomeOther.
func ParseCallback(raw string) (Outcome, string) {
	u, err := url.Parse(raw)
	if err != nil {
		return OutcomeOther, ""
	}

	// Custom schemes put the first segment in the host, so match on both.
	path := u.Host + u.Path
	sessionID := u.Query().Get("session_id")

	switch {
	case strings.Contains(path, "success"):
		return OutcomeSuccess, sessionID
	case strings.Contains(path, "cancel"):
		return OutcomeCancel, sessionID
	default:
		return OutcomeOther, sessionID
	}
}

// LinkEvent is a single checkout callback to process.
type LinkEvent struct {
	URL string
}

// LinkHandler processes one callback and reports its outcome.
type LinkHandler func(ctx context.Context, ev LinkEvent) (*models.Booking, error)

var (
	ErrAlreadySubscribed = errors.New("a deep link handler is already subscribed")
	ErrNoSubscriber      = errors.New("no deep link handler is subscribed")
)

type linkRequest struct {
	ctx  context.Context
	ev   LinkEvent
	resp chan linkResult
}

type linkResult struct {
	booking *models.Booking
	err     error
}

// Dispatcher serializes callback processing through a single worker so
// reconciliation runs never overlap. Subscribe installs the handler and
// returns a cancel func that stops delivery.
type Dispatcher struct {
	mu       sync.Mutex
	requests chan linkRequest
	stop     chan struct{}
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{requests: make(chan linkRequest, 16)}
}

func (d *Dispatcher) Subscribe(handler LinkHandler) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, ErrAlreadySubscribed
	}

	stop := make(chan struct{})
	d.stop = stop
	go d.run(handler, stop)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			d.mu.Lock()
			if d.stop == stop {
				d.stop = nil
			}
			d.mu.Unlock()
		})
	}
	return cancel, nil
}

func (d *Dispatcher) run(handler LinkHandler, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case req := <-d.requests:
			booking, err := handler(req.ctx, req.ev)
			req.resp <- linkResult{booking: booking, err: err}
		}
	}
}

// Dispatch queues an event and waits for the worker's result. Calls made
// while another event is in flight queue up behind it.
func (d *Dispatcher) Dispatch(ctx context.Context, ev LinkEvent) (*models.Booking, error) {
	d.mu.Lock()
	stop := d.stop
	d.mu.Unlock()
	if stop == nil {
		return nil, ErrNoSubscriber
	}

	req := linkRequest{ctx: ctx, ev: ev, resp: make(chan linkResult, 1)}
	select {
	case d.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-stop:
		return nil, ErrNoSubscriber
	}

	select {
	case res := <-req.resp:
		return res.booking, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-stop:
		return nil, ErrNoSubscriber
	}
}

// Ingress routes parsed callbacks into the reconciler. Its HandleCallback
// is the handler the dispatcher is subscribed with.
type Ingress struct {
	Reconciler Reconciler
	Pending    PendingStore
}

func NewIngress(reconciler Reconciler, pending PendingStore) *Ingress {
	return &Ingress{Reconciler: reconciler, Pending: pending}
}

func (in *Ingress) HandleCallback(ctx context.Context, ev LinkEvent) (*models.Booking, error) {
	logger := utils.GetLogger()
	outcome, sessionID := ParseCallback(ev.URL)

	switch outcome {
	case OutcomeCancel:
		// Best effort: if the cancel link carried a session id, drop the
		// matching pending context so the spot is not blocked.
		if sessionID != "" {
			if pending, err := in.Pending.GetBySession(ctx, sessionID); err == nil && pending != nil {
				_ = in.Pending.Clear(ctx, pending.SpotID, pending.SessionID)
			} else {
				_ = in.Pending.Clear(ctx, "", sessionID)
			}
		}
		logger.Info("Checkout cancelled", zap.String("sessionID", sessionID))
		return nil, nil

	case OutcomeSuccess:
		if sessionID == "" {
			return nil, NewCheckoutError(CodeMissingSession, "checkout callback is missing a session id", nil)
		}
		booking, err := in.Reconciler.Reconcile(ctx, sessionID)
		// Whatever happened, the pending context must not outlive the
		// attempt, or the next checkout for the spot would trip over it.
		spotID := ""
		if pending, perr := in.Pending.GetBySession(ctx, sessionID); perr == nil && pending != nil {
			spotID = pending.SpotID
		}
		if cerr := in.Pending.Clear(ctx, spotID, sessionID); cerr != nil {
			logger.Warn("Failed to clear pending checkout after callback",
				zap.String("sessionID", sessionID), zap.Error(cerr))
		}
		return booking, err

	default:
		logger.Debug("Ignoring unrelated deep link", zap.String("url", ev.URL))
		return nil, nil
	}
}
