// Package bot connects the transport to the dialog machine, the ledger,
// and the renderers. One inbound text event either answers an active
// dialog or dispatches a menu command.
package bot

import (
	"context"
	"errors"

	"github.com/talabot/talabot/internal/dialog"
	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/ledger"
	"github.com/talabot/talabot/internal/logging"
	"github.com/talabot/talabot/internal/render"
)

// Mid-dialog command policies. The original behavior is to reinterpret a
// menu command as the answer to the current step; "ignore" re-prompts and
// "abort" cancels the dialog and runs the command.
const (
	PolicyIgnore      = "ignore"
	PolicyAbort       = "abort"
	PolicyReinterpret = "reinterpret"
)

// Menu labels. These double as reply-keyboard buttons and as the command
// vocabulary, like the original bot.
const (
	cmdStart    = "/start"
	menuBuy     = "🟢 ثبت خرید"
	menuSell    = "🔴 ثبت فروش"
	menuSummary = "📈 خلاصه وضعیت"
	menuCSV     = "📤 خروجی CSV"
	menuXLSX    = "📊 خروجی اکسل"
	menuPDF     = "📑 خروجی PDF"
)

var mainMenu = [][]string{
	{menuBuy, menuSell},
	{menuSummary, menuCSV},
	{menuXLSX, menuPDF},
}

const (
	msgChoose        = "📊 لطفاً یکی از گزینه‌ها را انتخاب کنید:"
	msgNoData        = "❗ هنوز تراکنشی ثبت نکرده‌اید."
	msgDialogBusy    = "⏳ یک ثبت تراکنش در جریان است؛ ابتدا آن را کامل کنید."
	msgStorageFailed = "⚠️ ذخیره‌سازی با خطا مواجه شد؛ تراکنش ثبت نشد."
	msgExportFailed  = "⚠️ ساخت خروجی با خطا مواجه شد."
)

// Router is the event handler wired to the transport's OnMessage.
type Router struct {
	channel   domain.Channel
	machine   *dialog.Machine
	sessions  dialog.Store
	store     *ledger.Store
	directory *ledger.Directory
	renderer  *render.Renderer

	admin  domain.Identity // out-of-band recipient for first-contact notices
	policy string
	log    *logging.Logger
}

// New creates a router. policy is one of the Policy* constants; an empty
// value means PolicyReinterpret.
func New(
	channel domain.Channel,
	machine *dialog.Machine,
	sessions dialog.Store,
	store *ledger.Store,
	directory *ledger.Directory,
	renderer *render.Renderer,
	admin domain.Identity,
	policy string,
	log *logging.Logger,
) *Router {
	if policy == "" {
		policy = PolicyReinterpret
	}
	return &Router{
		channel:   channel,
		machine:   machine,
		sessions:  sessions,
		store:     store,
		directory: directory,
		renderer:  renderer,
		admin:     admin,
		policy:    policy,
		log:       log.Sub("bot"),
	}
}

// Wire registers HandleInbound on the channel.
func (r *Router) Wire() {
	r.channel.OnMessage(func(msg domain.InboundMessage) {
		r.HandleInbound(context.Background(), msg)
	})
}

// HandleInbound processes one text event to completion.
func (r *Router) HandleInbound(ctx context.Context, msg domain.InboundMessage) {
	r.log.Debug().
		Str("identity", string(msg.Identity)).
		Str("text", msg.Text).
		Msg("inbound message")

	if msg.Text == cmdStart {
		r.handleStart(ctx, msg)
		return
	}

	if sess, ok := r.sessions.Get(msg.Identity); ok {
		if isMenuCommand(msg.Text) {
			switch r.policy {
			case PolicyIgnore:
				r.send(ctx, domain.OutboundMessage{Identity: msg.Identity, Text: msgDialogBusy})
				return
			case PolicyAbort:
				r.sessions.Delete(msg.Identity)
				r.log.Debug().Str("identity", string(msg.Identity)).Msg("dialog aborted by command")
				// fall through to command dispatch
			default:
				// reinterpret: the command text is the answer to the
				// current step, matching the original behavior
				r.advance(ctx, sess, msg.Text)
				return
			}
		} else {
			r.advance(ctx, sess, msg.Text)
			return
		}
	}

	r.dispatch(ctx, msg)
}

// dispatch routes a menu command when no dialog is active.
func (r *Router) dispatch(ctx context.Context, msg domain.InboundMessage) {
	switch msg.Text {
	case menuBuy:
		r.startDialog(ctx, msg.Identity, domain.DirectionBuy)
	case menuSell:
		r.startDialog(ctx, msg.Identity, domain.DirectionSell)
	case menuSummary:
		r.showSummary(ctx, msg.Identity)
	case menuCSV:
		r.export(ctx, msg.Identity, r.renderer.CSV, "📄 فایل CSV تراکنش‌ها")
	case menuXLSX:
		r.export(ctx, msg.Identity, r.renderer.XLSX, "📊 فایل اکسل تراکنش‌ها")
	case menuPDF:
		r.export(ctx, msg.Identity, r.renderer.PDF, "📑 فایل PDF تراکنش‌ها")
	default:
		r.send(ctx, domain.OutboundMessage{Identity: msg.Identity, Text: msgChoose, Keyboard: mainMenu})
	}
}

// handleStart registers the identity, notifies the administrator on first
// contact, and shows the main menu.
func (r *Router) handleStart(ctx context.Context, msg domain.InboundMessage) {
	name := msg.DisplayName
	if name == "" {
		name = "کاربر"
	}

	first, err := r.directory.RegisterOnce(msg.Identity, name)
	if err != nil {
		r.log.Error().Err(err).Str("identity", string(msg.Identity)).Msg("registering identity failed")
	}
	if first && r.admin != "" {
		r.send(ctx, domain.OutboundMessage{
			Identity: r.admin,
			Text:     "📢 کاربر جدید ثبت شد:\n👤 " + name + "\n🆔 " + string(msg.Identity),
		})
	}

	r.send(ctx, domain.OutboundMessage{Identity: msg.Identity, Text: msgChoose, Keyboard: mainMenu})
}

func (r *Router) startDialog(ctx context.Context, id domain.Identity, dir domain.Direction) {
	sess, res := r.machine.Start(id, dir)
	r.sessions.Put(sess)
	r.send(ctx, domain.OutboundMessage{Identity: id, Text: res.Reply, Keyboard: res.Keyboard})
}

// advance feeds one answer to the active session and, on completion, runs
// the compute → persist → render → deliver pipeline.
func (r *Router) advance(ctx context.Context, sess *dialog.Session, text string) {
	id := sess.Identity

	res, err := r.machine.Advance(sess, text)
	switch {
	case errors.Is(err, dialog.ErrInvalidNumericInput), errors.Is(err, dialog.ErrInvalidChoice):
		// recovered locally: the reply already reissues the prompt
		r.log.Debug().Str("identity", string(id)).Stringer("step", sess.Step).Msg("answer rejected")
	case err != nil:
		r.log.Error().Err(err).Str("identity", string(id)).Msg("dialog failed")
		r.sessions.Delete(id)
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: msgStorageFailed, Keyboard: mainMenu})
		return
	}

	if !res.Done {
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: res.Reply, Keyboard: res.Keyboard})
		return
	}

	// Terminal step accepted: the session slot is freed before the write so
	// a storage failure cannot wedge the dialog.
	r.sessions.Delete(id)

	if err := r.store.Append(id, *res.Record); err != nil {
		r.log.Error().Err(err).Str("identity", string(id)).Msg("appending record failed")
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: msgStorageFailed, Keyboard: mainMenu})
		return
	}

	caption := "✅ تراکنش " + render.DirectionLabel(res.Record.Direction) + " ثبت شد."
	path, err := r.renderer.Invoice(*res.Record, id)
	if err != nil {
		r.log.Error().Err(err).Str("identity", string(id)).Msg("rendering invoice failed")
		// the record is durable; deliver the confirmation without the image
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: caption, Keyboard: mainMenu})
		return
	}

	r.send(ctx, domain.OutboundMessage{
		Identity: id,
		Keyboard: mainMenu,
		Photo:    &domain.Artifact{Path: path, Caption: caption},
	})
}

func (r *Router) showSummary(ctx context.Context, id domain.Identity) {
	history, err := r.store.Read(id)
	if err != nil {
		r.log.Error().Err(err).Str("identity", string(id)).Msg("reading history failed")
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: msgExportFailed})
		return
	}
	if len(history) == 0 {
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: msgNoData})
		return
	}

	sum := ledger.Summarize(history)
	text := "📊 خلاصه وضعیت:\n" +
		"-------------------------\n" +
		"🟢 مجموع خرید: " + render.AmountToman(sum.TotalBuy) + "\n" +
		"🔴 مجموع فروش: " + render.AmountToman(sum.TotalSell) + "\n" +
		"💎 سود / زیان خالص: " + render.AmountToman(sum.NetProfit) + "\n" +
		"-------------------------\n" +
		"📅 تعداد تراکنش‌ها: " + render.Count(sum.Count)

	r.send(ctx, domain.OutboundMessage{Identity: id, Text: text})
}

// export reads the history, renders it with the given renderer method, and
// delivers the artifact as a document.
func (r *Router) export(
	ctx context.Context,
	id domain.Identity,
	renderFn func(domain.Identity, domain.History) (string, error),
	caption string,
) {
	history, err := r.store.Read(id)
	if err != nil {
		r.log.Error().Err(err).Str("identity", string(id)).Msg("reading history failed")
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: msgExportFailed})
		return
	}

	path, err := renderFn(id, history)
	if errors.Is(err, domain.ErrNoData) {
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: msgNoData})
		return
	}
	if err != nil {
		r.log.Error().Err(err).Str("identity", string(id)).Msg("export failed")
		r.send(ctx, domain.OutboundMessage{Identity: id, Text: msgExportFailed})
		return
	}

	r.send(ctx, domain.OutboundMessage{
		Identity: id,
		Document: &domain.Artifact{Path: path, Caption: caption},
	})
}

func (r *Router) send(ctx context.Context, msg domain.OutboundMessage) {
	if err := r.channel.Send(ctx, msg); err != nil {
		r.log.Error().Err(err).Str("identity", string(msg.Identity)).Msg("sending reply failed")
	}
}

func isMenuCommand(text string) bool {
	switch text {
	case menuBuy, menuSell, menuSummary, menuCSV, menuXLSX, menuPDF:
		return true
	}
	return false
}
