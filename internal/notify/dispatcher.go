package notify

import (
	"context"
	"log/slog"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
	"github.com/Jaysins/yoghurt-backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_notifications_total",
		Help: "Order notification attempts by recipient, mode and outcome",
	},
	[]string{"recipient", "mode", "outcome"},
)

// MailSender hands one message to the outbound mail transport using the
// connection settings supplied at call time.
type MailSender interface {
	Send(cfg SMTPConfig, to string, msg Message) error
}

// Dispatcher picks the delivery path from current configuration and reports
// per-recipient outcomes. It never returns an error: anything that goes
// wrong inside is logged and downgraded to a false flag.
type Dispatcher struct {
	cfg       ConfigSource
	mail      MailSender
	delegated *DelegatedClient
	probe     *Probe
	log       *slog.Logger
}

func NewDispatcher(cfg ConfigSource, mail MailSender, delegated *DelegatedClient, probe *Probe, log *slog.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, mail: mail, delegated: delegated, probe: probe, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, snap domain.Snapshot, proof []byte) usecase.DispatchResult {
	cfg := d.cfg.NotifyConfig()
	mode := cfg.Mode()

	var res usecase.DispatchResult
	switch mode {
	case ModeDelegated:
		if d.probe != nil {
			d.probe.Kick(cfg.DelegatedBaseURL)
		}
		res = d.dispatchDelegated(ctx, cfg, snap, proof)
	case ModeLocal:
		res = d.dispatchLocal(cfg, snap, proof)
	default:
		d.log.Info("notifications disabled, skipping dispatch", "order_id", snap.ID)
		return usecase.DispatchResult{}
	}

	count(res.CustomerSent, "customer", mode)
	count(res.AdminSent, "admin", mode)
	return res
}

func (d *Dispatcher) dispatchDelegated(ctx context.Context, cfg Config, snap domain.Snapshot, proof []byte) usecase.DispatchResult {
	resp, err := d.delegated.SendOrderEmail(ctx, cfg.DelegatedBaseURL, snap, proof)
	if err != nil {
		// No retry here; a failed delegated call fails both recipients and
		// the caller of finalize decides what, if anything, to do about it.
		d.log.Error("delegated notification failed",
			"order_id", snap.ID, "backend", cfg.DelegatedBaseURL, "error", err)
		return usecase.DispatchResult{}
	}
	return usecase.DispatchResult{
		CustomerSent: resp.EmailsSent.Customer,
		AdminSent:    resp.EmailsSent.Admin,
	}
}

// dispatchLocal sends the two emails independently: a failure on one
// recipient never suppresses the attempt on the other.
func (d *Dispatcher) dispatchLocal(cfg Config, snap domain.Snapshot, proof []byte) usecase.DispatchResult {
	var res usecase.DispatchResult

	if err := d.mail.Send(cfg.SMTP, snap.Email, ComposeCustomer(snap, proof)); err != nil {
		d.log.Error("customer email failed", "order_id", snap.ID, "to", snap.Email, "error", err)
	} else {
		res.CustomerSent = true
	}

	if cfg.AdminEmail == "" {
		d.log.Warn("admin email not configured, skipping admin notification", "order_id", snap.ID)
	} else if err := d.mail.Send(cfg.SMTP, cfg.AdminEmail, ComposeAdmin(snap, proof)); err != nil {
		d.log.Error("admin email failed", "order_id", snap.ID, "to", cfg.AdminEmail, "error", err)
	} else {
		res.AdminSent = true
	}

	return res
}

func count(sent bool, recipient string, mode Mode) {
	outcome := "failed"
	if sent {
		outcome = "sent"
	}
	notificationsTotal.WithLabelValues(recipient, string(mode), outcome).Inc()
}
