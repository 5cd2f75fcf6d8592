package usecase

import (
	"context"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/mail"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultAppName      = "Storefront"
	defaultSendAttempts = 3
	defaultRetryBase    = 500 * time.Millisecond
)

//go:embed template/*
var templateFS embed.FS

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	repoMail  repoMail
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation

	appName      string
	sendAttempts uint64
	retryBase    time.Duration

	htmlTpl *htmltemplate.Template
	textTpl *texttemplate.Template
}

type Dependency struct {
	RepoMail   repoMail
	Validator  validator.Validator
	Clock      clock.Clocker
	Config     config.Config
	Instrument instrument.Instrumentation
}

func New(dep Dependency) (*Usecase, error) {
	htmlTpl, err := htmltemplate.ParseFS(templateFS, "template/passcode.html")
	if err != nil {
		return nil, err
	}

	textTpl, err := texttemplate.ParseFS(templateFS, "template/passcode.txt")
	if err != nil {
		return nil, err
	}

	uc := &Usecase{
		repoMail:     dep.RepoMail,
		validator:    dep.Validator,
		clock:        dep.Clock,
		ins:          dep.Instrument,
		appName:      defaultAppName,
		sendAttempts: defaultSendAttempts,
		retryBase:    defaultRetryBase,
		htmlTpl:      htmlTpl,
		textTpl:      textTpl,
	}

	if dep.Config != nil {
		if v := strings.TrimSpace(dep.Config.GetString("app.name")); v != "" {
			uc.appName = v
		}
		if v := dep.Config.GetInt("modules.notification.send_attempts"); v > 0 {
			uc.sendAttempts = uint64(v)
		}
		if v := dep.Config.GetInt("modules.notification.retry_base_ms"); v > 0 {
			uc.retryBase = time.Duration(v) * time.Millisecond
		}
	}

	return uc, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
