package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type stubMailer struct {
	mu      sync.Mutex
	sent    []OutboundMail
	fail    map[string]error
	hang    map[string]bool
	release chan struct{}
	delay   time.Duration

	inFlight    int32
	maxInFlight int32
}

func newStubMailer() *stubMailer {
	return &stubMailer{fail: map[string]error{}, hang: map[string]bool{}, release: make(chan struct{})}
}

func (m *stubMailer) Send(ctx context.Context, msg OutboundMail) error {
	cur := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&m.maxInFlight)
		if cur <= prev || atomic.CompareAndSwapInt32(&m.maxInFlight, prev, cur) {
			break
		}
	}

	if m.hang[msg.To] {
		<-m.release
		return nil
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if err := m.fail[msg.To]; err != nil {
		return err
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

func (m *stubMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	return out
}

func envelopeFor(id string, role models.RecipientRole) Envelope {
	return Envelope{RecipientID: id, Role: role, Mail: OutboundMail{To: id + "@example.edu", Subject: "s", HTML: "<p>x</p>"}}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	mailer := newStubMailer()
	mailer.fail["s2@example.edu"] = errors.New("mailbox unavailable")
	d := NewNotificationDispatcher(mailer, DispatcherConfig{SendTimeout: time.Second, MaxParallel: 3}, NewMetricsService(), nil)

	summary := d.Dispatch(context.Background(), models.StageScheduled, []Envelope{
		envelopeFor("s1", models.RecipientApplicant),
		envelopeFor("s2", models.RecipientApplicant),
		envelopeFor("s3", models.RecipientApplicant),
	})

	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{summary.Results[0].RecipientID, summary.Results[1].RecipientID, summary.Results[2].RecipientID})
	assert.True(t, errors.Is(summary.Results[1].Err, appErrors.ErrDelivery))
	assert.Contains(t, summary.Results[1].Error, "mailbox unavailable")
	assert.ElementsMatch(t, []string{"s1@example.edu", "s3@example.edu"}, mailer.sentTo())
}

func TestDispatchTimesOutHungSend(t *testing.T) {
	mailer := newStubMailer()
	mailer.hang["r1@example.edu"] = true
	defer close(mailer.release)
	d := NewNotificationDispatcher(mailer, DispatcherConfig{SendTimeout: 50 * time.Millisecond, MaxParallel: 2}, nil, nil)

	start := time.Now()
	summary := d.Dispatch(context.Background(), models.StageImminent, []Envelope{
		envelopeFor("s1", models.RecipientApplicant),
		envelopeFor("r1", models.RecipientRecruiter),
	})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.Results[0].Sent())
	assert.True(t, errors.Is(summary.Results[1].Err, context.DeadlineExceeded))
}

func TestDispatchRespectsParallelismBound(t *testing.T) {
	mailer := newStubMailer()
	mailer.delay = 20 * time.Millisecond
	d := NewNotificationDispatcher(mailer, DispatcherConfig{SendTimeout: time.Second, MaxParallel: 2}, nil, nil)

	envelopes := make([]Envelope, 0, 8)
	for i := 0; i < 8; i++ {
		envelopes = append(envelopes, envelopeFor(fmt.Sprintf("s%d", i), models.RecipientApplicant))
	}
	summary := d.Dispatch(context.Background(), models.StageScheduled, envelopes)

	assert.Equal(t, 8, summary.Sent)
	assert.LessOrEqual(t, atomic.LoadInt32(&mailer.maxInFlight), int32(2))
	for i, r := range summary.Results {
		assert.Equal(t, fmt.Sprintf("s%d", i), r.RecipientID)
	}
}

func TestDispatchReportsPreFailedEnvelopes(t *testing.T) {
	mailer := newStubMailer()
	d := NewNotificationDispatcher(mailer, DispatcherConfig{}, nil, nil)

	summary := d.Dispatch(context.Background(), models.StageScheduled, []Envelope{
		{RecipientID: "ghost", Role: models.RecipientApplicant, Err: appErrors.Clone(appErrors.ErrDelivery, "no email address on file")},
		envelopeFor("s1", models.RecipientApplicant),
	})

	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.Results[0].Sent())
	assert.Equal(t, []string{"s1@example.edu"}, mailer.sentTo())
}

func TestDispatchEmpty(t *testing.T) {
	d := NewNotificationDispatcher(newStubMailer(), DispatcherConfig{}, nil, nil)
	summary := d.Dispatch(context.Background(), models.StageImminent, nil)
	assert.Equal(t, 0, summary.Attempted)
	assert.False(t, summary.PartialFailure())
}
