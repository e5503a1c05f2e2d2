package service

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/internal/mailer"
	"github.com/segyhp/reminder-engine/internal/metrics"
	"github.com/segyhp/reminder-engine/internal/reminder"
	"github.com/segyhp/reminder-engine/internal/repository"
	customError "github.com/segyhp/reminder-engine/pkg/errors"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

const (
	candidateSetDueSoon = "due_soon"
	candidateSetOverdue = "overdue"
)

// Renderer produces message content for a sendable decision
type Renderer interface {
	Render(decision reminder.Decision, loan *domain.Loan, settings *domain.ReminderSettings, today time.Time) (*mailer.Message, error)
}

// Dependencies groups the collaborators of ReminderService. RunCache is
// optional.
type Dependencies struct {
	LoanRepo     repository.LoanRepository
	SettingsRepo repository.SettingsRepository
	AuditRepo    repository.AuditLogRepository
	Locker       repository.Locker
	RunCache     repository.RunSummaryCache
	Renderer     Renderer
	Transport    mailer.Transport
	Clock        utils.Clock
	Logger       *zap.Logger
}

// Options tune a ReminderService
type Options struct {
	Workers     int
	SendTimeout time.Duration
	Location    *time.Location
}

// ReminderService dispatches payment reminder emails
type ReminderService struct {
	loanRepo     repository.LoanRepository
	settingsRepo repository.SettingsRepository
	auditRepo    repository.AuditLogRepository
	locker       repository.Locker
	runCache     repository.RunSummaryCache
	renderer     Renderer
	transport    mailer.Transport
	clock        utils.Clock
	logger       *zap.Logger
	workers      int
	sendTimeout  time.Duration
	location     *time.Location
}

func NewReminderService(deps Dependencies, opts Options) *ReminderService {
	if deps.Clock == nil {
		deps.Clock = utils.SystemClock
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Locker == nil {
		deps.Locker = repository.NewMemoryLocker()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &ReminderService{
		loanRepo:     deps.LoanRepo,
		settingsRepo: deps.SettingsRepo,
		auditRepo:    deps.AuditRepo,
		locker:       deps.Locker,
		runCache:     deps.RunCache,
		renderer:     deps.Renderer,
		transport:    deps.Transport,
		clock:        deps.Clock,
		logger:       deps.Logger,
		workers:      opts.Workers,
		sendTimeout:  opts.SendTimeout,
		location:     opts.Location,
	}
}

// Today returns the current calendar date in the service's zone
func (s *ReminderService) Today() time.Time {
	return utils.Today(s.clock, s.location)
}

// RunToday runs the dispatch for the current calendar date
func (s *ReminderService) RunToday(ctx context.Context) (*domain.RunSummary, error) {
	return s.RunOnce(ctx, s.Today())
}

type candidate struct {
	loan *domain.Loan
	set  string
}

// RunOnce sends the reminders due on today. today may be the current date
// or an earlier one; a later date is rejected. A non-nil error means the
// date was rejected, settings could not be loaded or a candidate set could
// not be fetched; the summary is returned either way and reflects whatever
// was processed.
func (s *ReminderService) RunOnce(ctx context.Context, today time.Time) (*domain.RunSummary, error) {
	today = utils.CivilDate(today)
	started := s.clock.Now()
	current := utils.DateOf(started, s.location)

	summary := &domain.RunSummary{
		Date:      utils.FormatDate(today),
		StartedAt: started,
		Results:   []domain.LoanResult{},
	}

	log := s.logger.With(zap.String("date", summary.Date))
	log.Info("reminder run started")

	if today.After(current) {
		err := customError.WrapFutureRunDate(summary.Date, utils.FormatDate(current))
		log.Error("refusing to run reminders for a future date", zap.Error(err))
		summary.Errors = append(summary.Errors, err.Error())
		return s.finish(ctx, summary, err), err
	}

	// 1. Load settings fresh for this run
	settings, err := s.settingsRepo.Load(ctx)
	if errors.Is(err, customError.ErrSettingsNotConfigured) {
		log.Info("email settings not configured, skipping reminders")
		return s.finish(ctx, summary, nil), nil
	}
	if err != nil {
		err = customError.WrapSettingsLoadFailed(err)
		log.Error("failed to load email settings", zap.Error(err))
		summary.Errors = append(summary.Errors, err.Error())
		return s.finish(ctx, summary, err), err
	}

	if !s.transport.Ready(settings) {
		log.Info("SMTP not configured, skipping reminders")
		return s.finish(ctx, summary, nil), nil
	}

	if err := settings.Validate(); err != nil {
		err = customError.WrapInvalidSettings(err)
		log.Error("email settings are invalid", zap.Error(err))
		summary.Errors = append(summary.Errors, err.Error())
		return s.finish(ctx, summary, err), err
	}
	summary.Configured = true

	// 2-3. Fix the work list before any loan is processed
	candidates, fetchErr := s.fetchCandidates(ctx, settings, today)
	if fetchErr != nil {
		summary.Errors = append(summary.Errors, fetchErr.Error())
	}
	summary.Candidates = len(candidates)

	// 4. Per-loan pipeline; each goroutine owns one slot of results
	results := make([]domain.LoanResult, len(candidates))
	p := pool.New().WithMaxGoroutines(s.workers)
	for i, c := range candidates {
		i, c := i, c
		p.Go(func() {
			results[i] = s.processLoan(ctx, c, settings, today, current)
		})
	}
	p.Wait()

	// 5. Aggregate
	for _, r := range results {
		summary.Results = append(summary.Results, r)
		switch r.Status {
		case domain.ResultStatusSent:
			summary.Attempted++
			summary.Sent++
		case domain.ResultStatusFailed:
			summary.Attempted++
			summary.Failed++
		default:
			summary.Skipped++
		}
		if r.StateError != "" {
			summary.StateErrors++
		}
	}

	return s.finish(ctx, summary, fetchErr), fetchErr
}

func (s *ReminderService) finish(ctx context.Context, summary *domain.RunSummary, runErr error) *domain.RunSummary {
	summary.Elapsed = s.clock.Now().Sub(summary.StartedAt)
	metrics.RunDuration.Observe(summary.Elapsed.Seconds())

	fields := []zap.Field{
		zap.String("date", summary.Date),
		zap.Bool("configured", summary.Configured),
		zap.Int("candidates", summary.Candidates),
		zap.Int("attempted", summary.Attempted),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("state_errors", summary.StateErrors),
		zap.Duration("elapsed", summary.Elapsed),
	}
	if runErr != nil {
		s.logger.Warn("reminder run finished with errors", append(fields, zap.Error(runErr))...)
	} else {
		s.logger.Info(summary.Message(), fields...)
	}

	if s.runCache != nil {
		if err := s.runCache.Save(ctx, summary); err != nil {
			s.logger.Warn("failed to cache run summary", zap.Error(customError.WrapCacheError(err)))
		}
	}

	return summary
}

// fetchCandidates reads both candidate sets. A failed set is reported and
// left out; the other set is still returned.
func (s *ReminderService) fetchCandidates(ctx context.Context, settings *domain.ReminderSettings, today time.Time) ([]candidate, error) {
	dueOn := utils.AddDays(today, settings.ReminderDaysBefore)
	maxCount := settings.MaxOverdueReminders

	sets := []struct {
		name   string
		filter repository.LoanFilter
	}{
		{candidateSetDueSoon, repository.LoanFilter{DueOn: &dueOn}},
		{candidateSetOverdue, repository.LoanFilter{DueBefore: &today, MaxReminderCount: &maxCount}},
	}

	var (
		candidates []candidate
		errs       []error
	)
	seen := make(map[string]struct{})

	for _, set := range sets {
		loans, err := s.loanRepo.FindReminderCandidates(ctx, set.filter)
		if err != nil {
			err = customError.WrapLoanFetchFailed(set.name, err)
			s.logger.Error("failed to fetch reminder candidates", zap.String("set", set.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		for _, loan := range loans {
			key := loan.ID.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, candidate{loan: loan, set: set.name})
		}
	}

	return candidates, errors.Join(errs...)
}

// processLoan runs guard, classification, claim, send, audit and state
// update for one loan. It never returns an error; every failure is
// captured in the result. today drives classification; current is the
// calendar date the email actually goes out on, and keys the once-a-day
// claim and state update.
func (s *ReminderService) processLoan(ctx context.Context, c candidate, settings *domain.ReminderSettings, today, current time.Time) domain.LoanResult {
	loan := c.loan
	result := domain.LoanResult{LoanID: loan.ID}
	log := s.logger.With(zap.String("loan_id", loan.ID.String()), zap.String("set", c.set))

	skip := func(reason string) domain.LoanResult {
		result.Status = domain.ResultStatusSkipped
		result.Reason = reason
		metrics.LoansSkipped.WithLabelValues(reason).Inc()
		log.Debug("loan skipped", zap.String("reason", reason))
		return result
	}

	if reminder.AlreadySentToday(loan, today, s.location) || reminder.AlreadySentToday(loan, current, s.location) {
		return skip(domain.SkipReasonAlreadySentToday)
	}

	decision := reminder.Classify(loan, settings, today)
	switch decision {
	case reminder.Suppressed:
		return skip(domain.SkipReasonSuppressed)
	case reminder.None:
		return skip(domain.SkipReasonNoReminderDue)
	}
	result.EmailType = decision.EmailType()

	claimed, err := s.locker.Claim(ctx, loan.ID, current)
	if err != nil {
		log.Error("failed to claim loan for today", zap.Error(err))
		return skip(domain.SkipReasonClaimFailed)
	}
	if !claimed {
		return skip(domain.SkipReasonClaimedElsewhere)
	}

	recipient := strings.TrimSpace(loan.BorrowerEmail)
	subject := mailer.SubjectFor(decision)

	var sendErr error
	msg, err := s.renderer.Render(decision, loan, settings, today)
	if err != nil {
		sendErr = customError.WrapRenderFailed(result.EmailType, err)
	} else {
		subject = msg.Subject
		sendErr = s.send(ctx, settings, msg)
	}

	entry := &domain.AuditLogEntry{
		LoanID:         loan.ID,
		EmailType:      result.EmailType,
		RecipientEmail: recipient,
		Subject:        subject,
		Status:         domain.AuditStatusSent,
		Timestamp:      s.clock.Now(),
	}
	if sendErr != nil {
		message := sendErr.Error()
		entry.Status = domain.AuditStatusFailed
		entry.ErrorMessage = &message
	}
	s.recordAudit(ctx, entry, log)

	if sendErr != nil {
		if err := s.locker.Release(ctx, loan.ID, current); err != nil {
			log.Warn("failed to release claim after failed send", zap.Error(err))
		}
		metrics.RemindersFailed.WithLabelValues(result.EmailType).Inc()
		log.Warn("reminder send failed", zap.String("email_type", result.EmailType), zap.Error(sendErr))
		result.Status = domain.ResultStatusFailed
		result.Error = sendErr.Error()
		return result
	}

	metrics.RemindersSent.WithLabelValues(result.EmailType).Inc()
	log.Info("reminder sent", zap.String("email_type", result.EmailType), zap.String("recipient", recipient))
	result.Status = domain.ResultStatusSent

	update := domain.ReminderStateUpdate{
		ReminderCount:      loan.ReminderCount + 1,
		LastReminderSentAt: s.clock.Now(),
	}
	if decision.MarksOverdue() {
		status := domain.LoanStatusOverdue
		update.Status = &status
	}

	applied, err := s.loanRepo.UpdateReminderState(ctx, loan.ID, update, utils.StartOfDay(current, s.location))
	switch {
	case err != nil:
		err = customError.WrapStateUpdateFailed(loan.ID, err)
		metrics.StateUpdateFailures.Inc()
		log.Error("reminder sent but loan state not updated, reconcile manually", zap.Error(err))
		result.StateError = err.Error()
	case !applied:
		err = customError.WrapStateUpdateFailed(loan.ID, errors.New("a reminder was already recorded today"))
		metrics.StateUpdateFailures.Inc()
		log.Error("reminder sent but another run already recorded one today, reconcile manually", zap.Error(err))
		result.StateError = err.Error()
	}

	return result
}

// send bounds the transport call by sendTimeout even if the transport
// ignores its context
func (s *ReminderService) send(ctx context.Context, settings *domain.ReminderSettings, msg *mailer.Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.transport.Send(sendCtx, settings, msg)
	}()

	var err error
	select {
	case err = <-done:
	case <-sendCtx.Done():
		err = sendCtx.Err()
	}

	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return customError.WrapSendTimeout(s.sendTimeout)
	}

	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}

	return customError.WrapSendFailed(err)
}

func (s *ReminderService) recordAudit(ctx context.Context, entry *domain.AuditLogEntry, log *zap.Logger) {
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		log.Error("failed to write audit log entry",
			zap.String("email_type", entry.EmailType),
			zap.String("audit_status", entry.Status),
			zap.Error(customError.WrapAuditWriteFailed(entry.LoanID, err)),
		)
	}
}
