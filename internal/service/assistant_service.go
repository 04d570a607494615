package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/ai"
	"github.com/stratushr/stratus-backend/internal/repository"
)

// AssistantService answers employee questions about their own HR data. Each
// question gets a fresh chat session seeded with a context blob assembled
// from the employee's profile, leave ledger, and recent announcements; the
// model never sees another employee's data.
type AssistantService struct {
	client           *ai.Client
	employeeRepo     *repository.EmployeeRepository
	leave            *LeaveService
	announcementRepo *repository.AnnouncementRepository
	log              zerolog.Logger
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(
	client *ai.Client,
	employeeRepo *repository.EmployeeRepository,
	leave *LeaveService,
	announcementRepo *repository.AnnouncementRepository,
	log zerolog.Logger,
) *AssistantService {
	return &AssistantService{
		client:           client,
		employeeRepo:     employeeRepo,
		leave:            leave,
		announcementRepo: announcementRepo,
		log:              log.With().Str("component", "assistant_service").Logger(),
	}
}

// Ask streams the assistant's reply to one question through onDelta and
// returns the full reply once the stream ends.
func (s *AssistantService) Ask(ctx context.Context, employeeID int, question string, onDelta func(delta string) error) (string, error) {
	prompt, err := s.buildSystemPrompt(ctx, employeeID)
	if err != nil {
		return "", fmt.Errorf("build context: %w", err)
	}

	session := s.client.NewChatSession(prompt)
	reply, err := session.Send(ctx, question, onDelta)
	if err != nil {
		s.log.Warn().Err(err).Int("employee_id", employeeID).Msg("Assistant request failed")
		return "", err
	}
	return reply, nil
}

// buildSystemPrompt assembles the per-employee grounding context.
func (s *AssistantService) buildSystemPrompt(ctx context.Context, employeeID int) (string, error) {
	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return "", fmt.Errorf("get employee: %w", err)
	}

	balances, err := s.leave.Balances(ctx, employeeID)
	if err != nil {
		return "", fmt.Errorf("get balances: %w", err)
	}

	announcements, _, err := s.announcementRepo.ListPaginated(ctx, 5, 0)
	if err != nil {
		return "", fmt.Errorf("list announcements: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are the Stratus HR assistant. Answer questions about the employee below using only the data provided. ")
	b.WriteString("If the answer is not in the data, say so and suggest contacting HR.\n\n")

	fmt.Fprintf(&b, "Employee: %s (%s), role %s, department #%d.\n", employee.Name, employee.EmployeeNo, employee.Role, employee.DepartmentID)

	b.WriteString("Leave balances this year:\n")
	for _, bal := range balances {
		fmt.Fprintf(&b, "- %s: %d of %d days used\n", bal.Type, bal.UsedDays, bal.TotalDays)
	}

	if len(announcements) > 0 {
		b.WriteString("Recent company announcements:\n")
		for _, a := range announcements {
			fmt.Fprintf(&b, "- %s: %s\n", a.Title, a.Body)
		}
	}

	return b.String(), nil
}
