package workflow

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/stylemirror/backend/internal/model/message"
	"github.com/stylemirror/backend/internal/model/session"
)

// Reply texts mirror the bot's user-facing wording.
const (
	replyNoImage     = "We didn't receive an image. Please try sending your image again."
	replySendGarment = "Great! Now please send the image of the garment you want to try on."
	replyResult      = "Here is your virtual try-on result!"
	replyFailure     = "Sorry, something went wrong with the try-on process."

	resultCaption = "Here is your virtual try-on result:"
)

// MediaFetcher resolves an inbound media reference into image bytes.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaURL string) ([]byte, error)
}

// Synthesizer runs the try-on inference over the two collected images
// and returns a public URL for the result.
type Synthesizer interface {
	Synthesize(ctx context.Context, person, garment []byte) (string, error)
}

// Dispatcher sends outbound messages through the messaging transport.
type Dispatcher interface {
	SendMedia(to, body, mediaURL string) error
}

// Service drives the two-image collection workflow, one state machine
// per user. Events for the same user are serialized; distinct users
// proceed concurrently.
type Service struct {
	store    session.Store
	fetcher  MediaFetcher
	synth    Synthesizer
	dispatch Dispatcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the engine to its session store and collaborators.
func NewService(store session.Store, fetcher MediaFetcher, synth Synthesizer, dispatch Dispatcher) *Service {
	return &Service{
		store:    store,
		fetcher:  fetcher,
		synth:    synth,
		dispatch: dispatch,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Handle consumes one inbound event and returns the reply text for the
// webhook response. Fetch, synthesis and dispatch errors never escape:
// each collapses to a generic failure reply, and the terminal transition
// always drops the session whatever the outcome.
func (s *Service) Handle(ctx context.Context, in message.Inbound) message.Reply {
	unlock := s.lockUser(in.From)
	defer unlock()

	if in.MediaURL == "" {
		return message.Reply{Text: replyNoImage}
	}

	sess, ok := s.store.Get(in.From)
	if ok && sess.Stage != session.StageAwaitingGarment {
		// A stored session without a garment to wait for should not
		// exist; restart the flow from this image.
		s.store.Delete(in.From)
		ok = false
	}

	if !ok {
		s.store.Put(session.Session{
			UserID:         in.From,
			Stage:          session.StageAwaitingGarment,
			PersonImageRef: in.MediaURL,
			CreatedAt:      time.Now().UTC(),
		})
		return message.Reply{Text: replySendGarment}
	}

	// Terminal transition: both images are known. No retry of this
	// pairing is offered, so the session goes away unconditionally.
	defer s.store.Delete(in.From)

	resultURL, err := s.completeTryOn(ctx, sess.PersonImageRef, in.MediaURL)
	if err != nil {
		log.Printf("[workflow] try-on failed for %s: %v", in.From, err)
		return message.Reply{Text: replyFailure}
	}

	if err := s.dispatch.SendMedia(in.From, resultCaption, resultURL); err != nil {
		// No secondary channel exists to tell the user about this one.
		log.Printf("[workflow] result dispatch failed for %s: %v", in.From, err)
	}
	return message.Reply{Text: replyResult}
}

// completeTryOn fetches both images and runs exactly one synthesis.
func (s *Service) completeTryOn(ctx context.Context, personRef, garmentRef string) (string, error) {
	person, err := s.fetcher.FetchMedia(ctx, personRef)
	if err != nil {
		return "", err
	}
	garment, err := s.fetcher.FetchMedia(ctx, garmentRef)
	if err != nil {
		return "", err
	}
	return s.synth.Synthesize(ctx, person, garment)
}

// lockUser serializes event handling per user so concurrent webhooks
// from the same sender cannot interleave store reads and writes.
func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
