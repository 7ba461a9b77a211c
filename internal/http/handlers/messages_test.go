package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/medihub/internal/domain/message"
	"github.com/geocoder89/medihub/internal/domain/user"
	"github.com/geocoder89/medihub/internal/http/handlers"
)

type fakeMessagesRepo struct {
	sendFn         func(ctx context.Context, req message.SendRequest) (message.Message, error)
	conversationFn func(ctx context.Context, userA, userB string) ([]message.Message, error)
	markReadFn     func(ctx context.Context, id, receiverID string) error
}

func (f *fakeMessagesRepo) Send(ctx context.Context, req message.SendRequest) (message.Message, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, req)
	}
	return message.Message{}, nil
}

func (f *fakeMessagesRepo) Conversation(ctx context.Context, userA, userB string) ([]message.Message, error) {
	if f.conversationFn != nil {
		return f.conversationFn(ctx, userA, userB)
	}
	return nil, nil
}

func (f *fakeMessagesRepo) MarkRead(ctx context.Context, id, receiverID string) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, id, receiverID)
	}
	return nil
}

func TestSendMessageHandler(t *testing.T) {
	senderID := newUUID()
	receiverID := newUUID()

	validBody := `{"receiverId": "` + receiverID + `", "content": "How are you feeling today?"}`

	tests := []struct {
		name           string
		body           string
		setup          func(*fakeMessagesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: validBody,
			setup: func(f *fakeMessagesRepo) {
				f.sendFn = func(ctx context.Context, req message.SendRequest) (message.Message, error) {
					if req.SenderID != senderID {
						return message.Message{}, errors.New("senderId not taken from identity")
					}
					return message.NewFromSendRequest(req), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "empty_content",
			body:           `{"receiverId": "` + receiverID + `", "content": ""}`,
			setup:          func(f *fakeMessagesRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "self_message",
			body:           `{"receiverId": "` + senderID + `", "content": "hi me"}`,
			setup:          func(f *fakeMessagesRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown_receiver",
			body: validBody,
			setup: func(f *fakeMessagesRepo) {
				f.sendFn = func(ctx context.Context, req message.SendRequest) (message.Message, error) {
					return message.Message{}, message.ErrReceiverUnknown
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			body: validBody,
			setup: func(f *fakeMessagesRepo) {
				f.sendFn = func(ctx context.Context, req message.SendRequest) (message.Message, error) {
					return message.Message{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessagesRepo{}
			tt.setup(fake)

			h := handlers.NewMessagesHandler(fake)
			r := setupAuthedRouter(http.MethodPost, "/messages", senderID, []string{user.RolePatient}, h.Send)

			req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestConversationWithHandler(t *testing.T) {
	meID := newUUID()
	otherID := newUUID()

	tests := []struct {
		name           string
		url            string
		setup          func(*fakeMessagesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/messages/with/" + otherID,
			setup: func(f *fakeMessagesRepo) {
				f.conversationFn = func(ctx context.Context, userA, userB string) ([]message.Message, error) {
					if userA != meID || userB != otherID {
						return nil, errors.New("conversation participants mixed up")
					}
					return []message.Message{
						{ID: newUUID(), SenderID: userB, ReceiverID: userA, Content: "hello"},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_id",
			url:            "/messages/with/not-a-uuid",
			setup:          func(f *fakeMessagesRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/messages/with/" + otherID,
			setup: func(f *fakeMessagesRepo) {
				f.conversationFn = func(ctx context.Context, userA, userB string) ([]message.Message, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessagesRepo{}
			tt.setup(fake)

			h := handlers.NewMessagesHandler(fake)
			r := setupAuthedRouter(http.MethodGet, "/messages/with/:userId", meID, []string{user.RolePatient}, h.ConversationWith)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestMarkMessageReadHandler(t *testing.T) {
	msgID := newUUID()
	receiverID := newUUID()

	tests := []struct {
		name           string
		url            string
		setup          func(*fakeMessagesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/messages/" + msgID + "/read",
			setup: func(f *fakeMessagesRepo) {
				f.markReadFn = func(ctx context.Context, id, rid string) error {
					if rid != receiverID {
						return errors.New("receiver not taken from identity")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:           "invalid_id",
			url:            "/messages/not-a-uuid/read",
			setup:          func(f *fakeMessagesRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_receiver_or_missing",
			url:  "/messages/" + msgID + "/read",
			setup: func(f *fakeMessagesRepo) {
				f.markReadFn = func(ctx context.Context, id, rid string) error {
					return message.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessagesRepo{}
			tt.setup(fake)

			h := handlers.NewMessagesHandler(fake)
			r := setupAuthedRouter(http.MethodPost, "/messages/:id/read", receiverID, []string{user.RolePatient}, h.MarkRead)

			req := httptest.NewRequest(http.MethodPost, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
