package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vnioa/StudyMate-sub010/internal/mocks"
)

func TestAuditEmitterPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.chat", "studymate-chat", "test")
	userID := int64(7)

	publisher.On("Publish", mock.Anything, "audit.chat", mock.MatchedBy(func(event any) bool {
		env, ok := event.(AuditEnvelope)
		return ok &&
			env.SchemaVersion == 1 &&
			env.EventType == "audit_log" &&
			env.Service == "studymate-chat" &&
			env.Environment == "test" &&
			env.RequestID == "req-1" &&
			env.UserID != nil && *env.UserID == 7 &&
			env.Payload.Level == "INFO" &&
			env.Payload.Text == "room created"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "INFO", "room created", "req-1", &userID)
	publisher.AssertExpectations(t)
}

func TestAuditEmitterNilReceiverIsNoop(t *testing.T) {
	var emitter *AuditEmitter

	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "x", "req-1", nil)
	})
}

func TestAuditEmitterSwallowsPublishErrors(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.chat", "studymate-chat", "test")

	publisher.On("Publish", mock.Anything, "audit.chat", mock.Anything).
		Return(errors.New("broker down")).Once()

	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "ERROR", "x", "req-1", nil)
	})
	publisher.AssertExpectations(t)
}
