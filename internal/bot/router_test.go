package bot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talabot/talabot/internal/dialog"
	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/ledger"
	"github.com/talabot/talabot/internal/logging"
	"github.com/talabot/talabot/internal/render"
)

// fakeChannel records everything the router sends.
type fakeChannel struct {
	mu      sync.Mutex
	sent    []domain.OutboundMessage
	handler func(domain.InboundMessage)
}

func (c *fakeChannel) ID() string                      { return "fake" }
func (c *fakeChannel) Start(ctx context.Context) error { return nil }
func (c *fakeChannel) Stop(ctx context.Context) error  { return nil }

func (c *fakeChannel) Send(ctx context.Context, msg domain.OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeChannel) OnMessage(handler func(msg domain.InboundMessage)) {
	c.handler = handler
}

// all returns a copy of the sent messages.
func (c *fakeChannel) all() []domain.OutboundMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.OutboundMessage(nil), c.sent...)
}

// last returns the most recent sent message.
func (c *fakeChannel) last() domain.OutboundMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return domain.OutboundMessage{}
	}
	return c.sent[len(c.sent)-1]
}

// to filters sent messages by recipient.
func (c *fakeChannel) to(id domain.Identity) []domain.OutboundMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.OutboundMessage
	for _, m := range c.sent {
		if m.Identity == id {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	router  *Router
	ch      *fakeChannel
	store   *ledger.Store
	session dialog.Store
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	log := logging.New(nil, "silent")
	base := t.TempDir()

	store, err := ledger.NewStore(filepath.Join(base, "data"), log)
	require.NoError(t, err)
	directory := ledger.NewDirectory(filepath.Join(base, "users.json"), log)
	renderer, err := render.New(filepath.Join(base, "exports"), "", log)
	require.NoError(t, err)

	ch := &fakeChannel{}
	sessions := dialog.NewMemoryStore()
	router := New(ch, dialog.NewMachine(log), sessions, store, directory, renderer, "999", policy, log)
	router.Wire()

	return &fixture{router: router, ch: ch, store: store, session: sessions}
}

func (f *fixture) say(id domain.Identity, text string) {
	f.ch.handler(domain.InboundMessage{Identity: id, DisplayName: "Ali", Text: text})
}

func TestStartRegistersAndNotifiesAdminOnce(t *testing.T) {
	f := newFixture(t, "")

	f.say("123", "/start")
	adminMsgs := f.ch.to("999")
	require.Len(t, adminMsgs, 1)
	assert.Contains(t, adminMsgs[0].Text, "Ali")
	assert.Contains(t, adminMsgs[0].Text, "123")

	userMsgs := f.ch.to("123")
	require.Len(t, userMsgs, 1)
	assert.Equal(t, mainMenu, userMsgs[0].Keyboard)

	// second /start: menu again, but no second admin notification
	f.say("123", "/start")
	assert.Len(t, f.ch.to("999"), 1)
	assert.Len(t, f.ch.to("123"), 2)
}

func TestUnknownTextShowsMenu(t *testing.T) {
	f := newFixture(t, "")
	f.say("123", "سلام")

	last := f.ch.last()
	assert.Equal(t, msgChoose, last.Text)
	assert.Equal(t, mainMenu, last.Keyboard)
}

func TestGoldBuyPipeline(t *testing.T) {
	f := newFixture(t, "")

	f.say("123", menuBuy)
	for _, answer := range []string{"Ali", "طلا", "123000", "50000", "-"} {
		f.say("123", answer)
	}

	// the dialog is gone
	_, active := f.session.Get("123")
	assert.False(t, active)

	// the record is durable
	history, err := f.store.Read("123")
	require.NoError(t, err)
	require.Len(t, history, 1)
	rec := history[0]
	assert.Equal(t, domain.ItemGold, rec.Kind)
	assert.Equal(t, "Ali", rec.Counterparty)
	assert.Equal(t, "1.761", rec.Gold.Weight.String())

	// the confirmation carries the invoice image
	last := f.ch.last()
	require.NotNil(t, last.Photo)
	assert.Contains(t, last.Photo.Caption, "خرید")
	_, err = os.Stat(last.Photo.Path)
	assert.NoError(t, err)
}

func TestInvalidAnswerKeepsDialogAlive(t *testing.T) {
	f := newFixture(t, "")

	f.say("123", menuSell)
	f.say("123", "Ali")
	f.say("123", "طلا")
	f.say("123", "not a number")

	sess, active := f.session.Get("123")
	require.True(t, active)
	assert.Equal(t, dialog.StepGoldPrice, sess.Step)
	assert.Contains(t, f.ch.last().Text, "عدد")

	f.say("123", "123000")
	sess, _ = f.session.Get("123")
	assert.Equal(t, dialog.StepAmount, sess.Step)
}

func TestSummary(t *testing.T) {
	f := newFixture(t, "")

	f.say("123", menuSummary)
	assert.Equal(t, msgNoData, f.ch.last().Text)

	f.say("123", menuBuy)
	for _, answer := range []string{"Ali", "طلا", "123000", "50000", "-"} {
		f.say("123", answer)
	}

	f.say("123", menuSummary)
	text := f.ch.last().Text
	assert.Contains(t, text, "خلاصه وضعیت")
	assert.Contains(t, text, render.AmountToman(decimal.RequireFromString("50000")))
	assert.Contains(t, text, render.Count(1))
}

func TestExports(t *testing.T) {
	f := newFixture(t, "")

	// no data yet
	for _, menu := range []string{menuCSV, menuXLSX, menuPDF} {
		f.say("123", menu)
		assert.Equal(t, msgNoData, f.ch.last().Text)
	}

	f.say("123", menuBuy)
	for _, answer := range []string{"Ali", "طلا", "123000", "50000", "-"} {
		f.say("123", answer)
	}

	for _, tt := range []struct {
		menu string
		ext  string
	}{
		{menuCSV, ".csv"},
		{menuXLSX, ".xlsx"},
		{menuPDF, ".pdf"},
	} {
		f.say("123", tt.menu)
		last := f.ch.last()
		require.NotNil(t, last.Document, tt.menu)
		assert.Contains(t, last.Document.Path, tt.ext)
		_, err := os.Stat(last.Document.Path)
		assert.NoError(t, err)
	}
}

func TestCommandPolicyReinterpret(t *testing.T) {
	f := newFixture(t, PolicyReinterpret)

	f.say("123", menuBuy)
	// mid-dialog command is the answer to the name step
	f.say("123", menuSummary)

	sess, active := f.session.Get("123")
	require.True(t, active)
	assert.Equal(t, dialog.StepItemKind, sess.Step)
	assert.Equal(t, menuSummary, sess.Counterparty)
}

func TestCommandPolicyIgnore(t *testing.T) {
	f := newFixture(t, PolicyIgnore)

	f.say("123", menuBuy)
	f.say("123", menuSummary)

	sess, active := f.session.Get("123")
	require.True(t, active)
	assert.Equal(t, dialog.StepName, sess.Step)
	assert.Equal(t, msgDialogBusy, f.ch.last().Text)
}

func TestCommandPolicyAbort(t *testing.T) {
	f := newFixture(t, PolicyAbort)

	f.say("123", menuBuy)
	f.say("123", menuSummary)

	_, active := f.session.Get("123")
	assert.False(t, active)
	// the command ran: empty history answers "no data"
	assert.Equal(t, msgNoData, f.ch.last().Text)
}

func TestSecondDialogCannotStartMidDialog(t *testing.T) {
	// with the default policy the start command is swallowed as an answer,
	// so there is never more than one session slot per identity
	f := newFixture(t, "")

	f.say("123", menuBuy)
	f.say("123", menuSell)

	sess, active := f.session.Get("123")
	require.True(t, active)
	assert.Equal(t, domain.DirectionBuy, sess.Direction)
	assert.Equal(t, 1, f.session.Len())
}

func TestIdentitiesAreIsolated(t *testing.T) {
	f := newFixture(t, "")

	f.say("1", menuBuy)
	f.say("2", menuSell)

	s1, ok := f.session.Get("1")
	require.True(t, ok)
	s2, ok := f.session.Get("2")
	require.True(t, ok)
	assert.Equal(t, domain.DirectionBuy, s1.Direction)
	assert.Equal(t, domain.DirectionSell, s2.Direction)
}
