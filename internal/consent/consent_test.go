package consent

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/glebarez/go-sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivabem/vivabem-server/internal/report"
	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *store.Store {
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Dialector{Conn: conn}, &gorm.Config{})
	require.NoError(t, err)

	st, err := store.NewWithDB(db)
	require.NoError(t, err)
	return st
}

func TestAuthorized_Matrix(t *testing.T) {
	tests := []struct {
		name        string
		hasConsent  bool
		active      bool
		dataSharing bool
		caregiver   bool
		want        bool
	}{
		{"all granted", true, true, true, true, true},
		{"inactive consent", true, false, true, true, false},
		{"sharing off", true, true, false, true, false},
		{"both flags off", true, false, false, true, false},
		{"no caregiver", true, true, true, false, false},
		{"inactive and no caregiver", true, false, true, false, false},
		{"sharing off and no caregiver", true, true, false, false, false},
		{"no consent row at all", false, false, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := setupTestStore(t)
			svc := NewService(st, zap.NewNop())

			if tt.hasConsent {
				require.NoError(t, st.UpsertConsent(&store.Consent{
					UserID:      "usr_123",
					Active:      tt.active,
					DataSharing: tt.dataSharing,
				}))
			}
			if tt.caregiver {
				require.NoError(t, st.CreateCaregiver(&store.Caregiver{
					UserID: "usr_123",
					Name:   "Maria",
					Email:  "maria@example.com",
				}))
			}

			caregiver, ok, err := svc.Authorized(context.Background(), "usr_123")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				require.NotNil(t, caregiver)
				assert.Equal(t, "maria@example.com", caregiver.Email)
			}
		})
	}
}

func TestAuthorized_CaregiverWithoutEmail(t *testing.T) {
	st := setupTestStore(t)
	svc := NewService(st, zap.NewNop())

	require.NoError(t, st.UpsertConsent(&store.Consent{UserID: "usr_123", Active: true, DataSharing: true}))
	require.NoError(t, st.CreateCaregiver(&store.Caregiver{UserID: "usr_123", Name: "Maria"}))

	_, ok, err := svc.Authorized(context.Background(), "usr_123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_DefaultsWhenMissing(t *testing.T) {
	st := setupTestStore(t)
	svc := NewService(st, zap.NewNop())

	consent, err := svc.Get(context.Background(), "usr_new")
	require.NoError(t, err)
	assert.False(t, consent.Active)
	assert.False(t, consent.DataSharing)
}

func TestUpdate_Upserts(t *testing.T) {
	st := setupTestStore(t)
	svc := NewService(st, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Update(ctx, "usr_123", true, false)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "usr_123", true, true)
	require.NoError(t, err)

	consent, err := svc.Get(ctx, "usr_123")
	require.NoError(t, err)
	assert.True(t, consent.Active)
	assert.True(t, consent.DataSharing)
}

type fakeMailer struct {
	err      error
	to       string
	subject  string
	htmlBody string
	sends    int
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	f.sends++
	f.to = to
	f.subject = subject
	f.htmlBody = htmlBody
	return f.err
}

func setupNotifier(t *testing.T, mailer *fakeMailer) (*CaregiverNotifier, *store.Store) {
	st := setupTestStore(t)
	svc := NewService(st, zap.NewNop())

	require.NoError(t, st.CreateUser(&store.User{ID: "usr_123", Name: "Dona Célia"}))

	return NewCaregiverNotifier(svc, st, mailer, zap.NewNop()), st
}

func TestNotify_SendsWhenAuthorized(t *testing.T) {
	mailer := &fakeMailer{}
	notifier, st := setupNotifier(t, mailer)

	require.NoError(t, st.UpsertConsent(&store.Consent{UserID: "usr_123", Active: true, DataSharing: true}))
	require.NoError(t, st.CreateCaregiver(&store.Caregiver{UserID: "usr_123", Name: "Maria", Email: "maria@example.com"}))

	notifier.Notify(context.Background(), "usr_123", &report.StructuredReport{
		OverallAssessment:   "Dia ótimo.",
		Recommendations:     []string{"Beber água"},
		MotivationalMessage: "Continue assim!",
	})

	assert.Equal(t, 1, mailer.sends)
	assert.Equal(t, "maria@example.com", mailer.to)
	assert.Equal(t, "VivaBem+ | Relatório Diário de Dona Célia", mailer.subject)
	assert.Contains(t, mailer.htmlBody, "Olá, Maria!")
	assert.Contains(t, mailer.htmlBody, "Dia ótimo.")
	assert.Contains(t, mailer.htmlBody, "• Beber água")
	assert.Contains(t, mailer.htmlBody, "Continue assim!")
}

func TestNotify_SkipsWithoutConsent(t *testing.T) {
	mailer := &fakeMailer{}
	notifier, st := setupNotifier(t, mailer)

	require.NoError(t, st.CreateCaregiver(&store.Caregiver{UserID: "usr_123", Name: "Maria", Email: "maria@example.com"}))

	notifier.Notify(context.Background(), "usr_123", &report.StructuredReport{OverallAssessment: "ok"})
	assert.Equal(t, 0, mailer.sends)
}

func TestNotify_SwallowsDeliveryFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp: connection refused")}
	notifier, st := setupNotifier(t, mailer)

	require.NoError(t, st.UpsertConsent(&store.Consent{UserID: "usr_123", Active: true, DataSharing: true}))
	require.NoError(t, st.CreateCaregiver(&store.Caregiver{UserID: "usr_123", Name: "Maria", Email: "maria@example.com"}))

	// Must not panic or propagate anything
	notifier.Notify(context.Background(), "usr_123", &report.StructuredReport{OverallAssessment: "ok"})
	assert.Equal(t, 1, mailer.sends)
}

func TestNotify_EmptyReportFieldsBecomeNA(t *testing.T) {
	mailer := &fakeMailer{}
	notifier, st := setupNotifier(t, mailer)

	require.NoError(t, st.UpsertConsent(&store.Consent{UserID: "usr_123", Active: true, DataSharing: true}))
	require.NoError(t, st.CreateCaregiver(&store.Caregiver{UserID: "usr_123", Name: "Maria", Email: "maria@example.com"}))

	notifier.Notify(context.Background(), "usr_123", &report.StructuredReport{})
	assert.Contains(t, mailer.htmlBody, "N/A")
	assert.Contains(t, mailer.htmlBody, "Nenhuma recomendação disponível.")
}
