package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/appointment"
	"github.com/hackgods/agent-crm-scheduling/internal/config"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/reminder"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

var (
	reminderTypes = []reminder.Type{
		reminder.TypeCall, reminder.TypeVisit, reminder.TypePolicyExpiry,
		reminder.TypeMaturingPolicy, reminder.TypeHoliday, reminder.TypeCustom,
	}
	priorities = []string{"High", "Medium", "Low"}
	apptTypes  = []appointment.Type{
		appointment.TypeCall, appointment.TypeMeeting, appointment.TypeSiteVisit,
		appointment.TypePolicyReview, appointment.TypeClaimsProcessing,
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("config load error")
	}
	logger.Init(cfg)
	log := logger.Log

	agentID := uuid.New()
	if raw := os.Getenv("SEED_AGENT_ID"); raw != "" {
		agentID, err = uuid.Parse(raw)
		if err != nil {
			log.WithError(err).Fatal("SEED_AGENT_ID must be a UUID")
		}
	}
	reminderCount := envInt("SEED_REMINDERS", 200)
	appointmentCount := envInt("SEED_APPOINTMENTS", 150)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg, "seed")
	cancel()
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	procs := db.NewPgProcedures(pool)
	reminders := reminder.NewService(reminder.NewPgRepository(procs), cfg.Timezone)
	appointments := appointment.NewService(appointment.NewPgRepository(procs), nil, nil, cfg.Timezone)

	// zero seeds from the system source
	faker := gofakeit.New(0)

	if err := seedReminders(context.Background(), reminders, faker, agentID, reminderCount); err != nil {
		log.WithError(err).Fatal("seed reminders")
	}
	if err := seedAppointments(context.Background(), appointments, faker, agentID, appointmentCount); err != nil {
		log.WithError(err).Fatal("seed appointments")
	}

	log.WithField("agent_id", agentID).Info("seed complete")
}

func seedReminders(ctx context.Context, svc *reminder.Service, faker *gofakeit.Faker, agentID uuid.UUID, count int) error {
	entry := logger.Log.WithFields(logrus.Fields{"agent_id": agentID, "count": count})
	entry.Info("seeding reminders")

	for i := 0; i < count; i++ {
		day := time.Now().AddDate(0, 0, faker.Number(-10, 60))
		at := fmt.Sprintf("%02d:%02d", faker.Number(8, 17), faker.RandomInt([]int{0, 15, 30, 45}))

		_, err := svc.Create(ctx, agentID, reminder.CreateInput{
			ReminderType: reminderTypes[faker.Number(0, len(reminderTypes)-1)],
			Title:        fmt.Sprintf("Follow up on %s", faker.ProductName()),
			Description:  faker.Phrase(),
			ReminderDate: day.Format(temporal.DateLayout),
			ReminderTime: &at,
			ClientName:   faker.Name(),
			Priority:     reminder.Priority(priorities[faker.Number(0, len(priorities)-1)]),
			EnableSMS:    faker.Bool(),
			AutoSend:     faker.Number(1, 10) == 1,
			Notes:        faker.Company(),
		})
		if err != nil {
			return fmt.Errorf("reminder %d: %w", i, err)
		}
	}

	entry.Info("reminders seeded")
	return nil
}

// seedAppointments books random hour-long windows; overlapping picks are
// rejected by the conflict check and skipped.
func seedAppointments(ctx context.Context, svc *appointment.Service, faker *gofakeit.Faker, agentID uuid.UUID, count int) error {
	entry := logger.Log.WithFields(logrus.Fields{"agent_id": agentID, "count": count})
	entry.Info("seeding appointments")

	created, skipped := 0, 0
	for i := 0; i < count; i++ {
		day := time.Now().AddDate(0, 0, faker.Number(-7, 45))
		hour := faker.Number(8, 17)
		start := fmt.Sprintf("%02d:00", hour)
		end := fmt.Sprintf("%02d:00", hour+1)

		_, _, err := svc.Create(ctx, agentID, appointment.CreateInput{
			ClientName:    faker.Name(),
			ClientPhone:   faker.Phone(),
			ClientEmail:   faker.Email(),
			ClientAddress: faker.Address().Address,
			Title:         fmt.Sprintf("%s with %s", faker.BuzzWord(), faker.FirstName()),
			Description:   faker.Phrase(),
			Date:          day.Format(temporal.DateLayout),
			StartTime:     &start,
			EndTime:       &end,
			Location:      faker.City(),
			Type:          apptTypes[faker.Number(0, len(apptTypes)-1)],
			Priority:      appointment.Priority(priorities[faker.Number(0, len(priorities)-1)]),
			ReminderSet:   faker.Bool(),
		})
		switch {
		case errors.Is(err, apperr.ErrConflict):
			skipped++
		case err != nil:
			return fmt.Errorf("appointment %d: %w", i, err)
		default:
			created++
		}
	}

	entry.WithFields(logrus.Fields{"created": created, "skipped": skipped}).Info("appointments seeded")
	return nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
