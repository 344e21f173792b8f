package mail

import (
	"context"
	"errors"
	"net/mail"
	"net/smtp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/pkg/config"
)

type outcomes struct {
	mu   sync.Mutex
	seen []string
}

func (o *outcomes) record(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, outcome)
}

func (o *outcomes) list() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.seen...)
}

func TestRenderEscapesAndLinks(t *testing.T) {
	html, err := Render(TemplateRejection, TemplateData{
		RecipientName: "Ada <script>",
		Reason:        "Matric number not found",
		Link:          "https://portal.example.com/login.html",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Ada &lt;script&gt;")
	assert.Contains(t, html, "Matric number not found")
	assert.Contains(t, html, `href="https://portal.example.com/login.html"`)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing", TemplateData{})
	assert.Error(t, err)
}

func TestDispatchInlineWhenQueueStopped(t *testing.T) {
	var o outcomes
	failing := SenderFunc(func(context.Context, Message) error { return errors.New("smtp down") })
	d := NewDispatcher(failing, DispatcherConfig{Observer: o.record}, nil)

	err := d.Dispatch(context.Background(), Message{To: "ada@example.com", Subject: "hi"})
	require.Error(t, err)
	assert.Equal(t, []string{OutcomeFailed}, o.list())
}

func TestDispatchQueuedRetriesUntilSent(t *testing.T) {
	var o outcomes
	var calls int32
	flaky := SenderFunc(func(context.Context, Message) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("temporary")
		}
		return nil
	})
	d := NewDispatcher(flaky, DispatcherConfig{Workers: 1, Retries: 2, RetryDelay: 5 * time.Millisecond, Observer: o.record}, nil)
	d.Start(context.Background())
	defer d.Stop()

	require.NoError(t, d.Dispatch(context.Background(), Message{To: "ada@example.com", Subject: "hi"}))
	require.Eventually(t, func() bool { return len(o.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{OutcomeSent}, o.list())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDispatchQueuedGivesUp(t *testing.T) {
	var o outcomes
	failing := SenderFunc(func(context.Context, Message) error { return errors.New("rejected") })
	d := NewDispatcher(failing, DispatcherConfig{Workers: 1, Retries: 1, RetryDelay: time.Millisecond, Observer: o.record}, nil)
	d.Start(context.Background())
	defer d.Stop()

	require.NoError(t, d.Dispatch(context.Background(), Message{To: "ada@example.com"}))
	require.Eventually(t, func() bool { return len(o.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{OutcomeFailed}, o.list())
}

func TestDispatchOverflowDoesNotBlockCaller(t *testing.T) {
	var o outcomes
	var sent int32
	slow := SenderFunc(func(context.Context, Message) error {
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&sent, 1)
		return nil
	})
	d := NewDispatcher(slow, DispatcherConfig{Workers: 2, QueueSize: 4, Observer: o.record}, nil)
	d.Start(context.Background())

	const total = 60
	started := time.Now()
	for i := 0; i < total; i++ {
		require.NoError(t, d.Dispatch(context.Background(), Message{To: "intern@example.com", Subject: "broadcast"}))
	}
	assert.Less(t, time.Since(started), 100*time.Millisecond)

	d.Stop()
	assert.EqualValues(t, total, atomic.LoadInt32(&sent))
	assert.Len(t, o.list(), total)
}

func TestStopWaitsForBackgroundTasks(t *testing.T) {
	var o outcomes
	d := NewDispatcher(SenderFunc(func(context.Context, Message) error { return nil }), DispatcherConfig{Workers: 1, Observer: o.record}, nil)
	d.Start(context.Background())

	var ran int32
	d.Go(func(ctx context.Context) {
		time.Sleep(20 * time.Millisecond)
		_ = d.Dispatch(ctx, Message{To: "ada@example.com", Subject: "approved"})
		atomic.StoreInt32(&ran, 1)
	})
	d.Stop()

	assert.EqualValues(t, 1, atomic.LoadInt32(&ran))
	assert.Equal(t, []string{OutcomeSent}, o.list())

	inline := false
	d.Go(func(context.Context) { inline = true })
	assert.True(t, inline)
}

func TestSMTPSenderBuildsHTMLMessage(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 2525, "", "", mail.Address{Name: "Portal", Address: "no-reply@example.com"})
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	require.NoError(t, s.Send(context.Background(), Message{To: "ada@example.com", ToName: "Ada", Subject: "Approved", HTML: "<p>ok</p>"}))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "no-reply@example.com", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	body := string(gotBody)
	assert.Contains(t, body, "Content-Type: text/html")
	assert.Contains(t, body, "Subject: Approved\r\n")
	assert.True(t, strings.HasSuffix(body, "\r\n\r\n<p>ok</p>"))
}

func TestSMTPSenderRequiresRecipient(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 25, "", "", mail.Address{Address: "a@b.c"})
	assert.Error(t, s.Send(context.Background(), Message{}))
}

func TestNewSenderSelectsProvider(t *testing.T) {
	s, err := NewSender(config.MailConfig{Provider: config.MailProviderLog}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(config.MailConfig{Provider: config.MailProviderSendGrid, SendGridAPIKey: "key"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	_, err = NewSender(config.MailConfig{Provider: config.MailProviderSMTP}, nil)
	assert.Error(t, err)

	_, err = NewSender(config.MailConfig{Provider: "pigeon"}, nil)
	assert.Error(t, err)
}
