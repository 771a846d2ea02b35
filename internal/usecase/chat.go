package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"recipe-genie/internal/domain"
	"recipe-genie/internal/markdown"
	"recipe-genie/internal/repository"
)

const (
	defaultChatLimit = 20
	maxMessageLen    = 4000
	maxTitleLen      = 120
)

// ConversationStore persists conversations, their messages, and per-user
// preferences.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID string) (domain.Conversation, error)
	ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)
	RenameConversation(ctx context.Context, userID, chatID, title string) error
	DeleteConversation(ctx context.Context, userID, chatID string) error
	RecordExchange(ctx context.Context, userID, chatID, userText, replyText string) error
	ListMessages(ctx context.Context, userID, chatID string) ([]domain.Message, error)
	SaveUserPreferences(ctx context.Context, userID string, prefs json.RawMessage) error
	GetUserPreferences(ctx context.Context, userID string) (json.RawMessage, error)
}

// Assistant produces a reply for one user prompt. Implementations own their
// failure handling and always return a usable reply.
type Assistant interface {
	Ask(ctx context.Context, prompt string) string
}

type ChatService struct {
	store     ConversationStore
	assistant Assistant
	chatLimit int
}

type SendInput struct {
	UserID  string
	ChatID  string
	Message string
}

type SendOutput struct {
	Reply  string
	ChatID string
}

func NewChatService(store ConversationStore, assistant Assistant) (*ChatService, error) {
	if store == nil {
		return nil, errors.New("usecase: conversation store must not be nil")
	}
	if assistant == nil {
		return nil, errors.New("usecase: assistant must not be nil")
	}
	return &ChatService{store: store, assistant: assistant, chatLimit: defaultChatLimit}, nil
}

// SendMessage runs one exchange: ask the assistant, strip markdown noise
// from the reply, and persist the user/assistant pair. An empty ChatID
// starts a new conversation whose id is returned in the output.
func (s *ChatService) SendMessage(ctx context.Context, in SendInput) (SendOutput, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return SendOutput{}, newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return SendOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > maxMessageLen {
		return SendOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	chatID := strings.TrimSpace(in.ChatID)
	if chatID == "" {
		chatID = newChatID()
	}

	reply := markdown.Strip(s.assistant.Ask(ctx, message))
	if reply == "" {
		return SendOutput{}, newError(ErrorInternal, "empty_assistant_reply", nil)
	}

	if err := s.store.RecordExchange(ctx, userID, chatID, message, reply); err != nil {
		return SendOutput{}, newError(ErrorPersistence, "record_exchange_error", err)
	}

	return SendOutput{Reply: reply, ChatID: chatID}, nil
}

// NewChat creates an empty conversation up front, before any message is
// sent.
func (s *ChatService) NewChat(ctx context.Context, userID string) (domain.Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Conversation{}, newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	conv, err := s.store.CreateConversation(ctx, userID)
	if err != nil {
		return domain.Conversation{}, newError(ErrorPersistence, "create_conversation_error", err)
	}
	return conv, nil
}

// ListChats returns the user's most recently active conversations.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]domain.Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	chats, err := s.store.ListConversations(ctx, userID, s.chatLimit)
	if err != nil {
		return nil, newError(ErrorPersistence, "list_conversations_error", err)
	}
	return chats, nil
}

// ListMessages returns a conversation's messages in chronological order.
func (s *ChatService) ListMessages(ctx context.Context, userID, chatID string) ([]domain.Message, error) {
	userID = strings.TrimSpace(userID)
	chatID = strings.TrimSpace(chatID)
	if userID == "" {
		return nil, newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	if chatID == "" {
		return nil, newError(ErrorInvalidInput, "empty_chat_id", nil)
	}
	msgs, err := s.store.ListMessages(ctx, userID, chatID)
	if err != nil {
		return nil, newError(ErrorPersistence, "list_messages_error", err)
	}
	return msgs, nil
}

// Rename overwrites a conversation's title.
func (s *ChatService) Rename(ctx context.Context, userID, chatID, title string) error {
	userID = strings.TrimSpace(userID)
	chatID = strings.TrimSpace(chatID)
	title = strings.TrimSpace(title)
	if userID == "" {
		return newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	if chatID == "" {
		return newError(ErrorInvalidInput, "empty_chat_id", nil)
	}
	if title == "" {
		return newError(ErrorInvalidInput, "empty_title", nil)
	}
	if len(title) > maxTitleLen {
		return newError(ErrorInvalidInput, "title_too_long", nil)
	}
	if err := s.store.RenameConversation(ctx, userID, chatID, title); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return newError(ErrorNotFound, "conversation_not_found", err)
		}
		return newError(ErrorPersistence, "rename_conversation_error", err)
	}
	return nil
}

// Delete removes a conversation and all of its messages.
func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	userID = strings.TrimSpace(userID)
	chatID = strings.TrimSpace(chatID)
	if userID == "" {
		return newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	if chatID == "" {
		return newError(ErrorInvalidInput, "empty_chat_id", nil)
	}
	if err := s.store.DeleteConversation(ctx, userID, chatID); err != nil {
		return newError(ErrorPersistence, "delete_conversation_error", err)
	}
	return nil
}

// GetPreferences returns the user's stored preference document, or an empty
// object when none was saved yet.
func (s *ChatService) GetPreferences(ctx context.Context, userID string) (json.RawMessage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	prefs, err := s.store.GetUserPreferences(ctx, userID)
	if err != nil {
		return nil, newError(ErrorPersistence, "get_preferences_error", err)
	}
	return prefs, nil
}

// SavePreferences stores an arbitrary preference document for the user.
func (s *ChatService) SavePreferences(ctx context.Context, userID string, prefs json.RawMessage) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return newError(ErrorInvalidInput, "empty_user_id", nil)
	}
	if len(prefs) == 0 || !json.Valid(prefs) {
		return newError(ErrorInvalidInput, "invalid_preferences", nil)
	}
	if err := s.store.SaveUserPreferences(ctx, userID, prefs); err != nil {
		return newError(ErrorPersistence, "save_preferences_error", err)
	}
	return nil
}

var newChatID = func() string {
	return uuid.NewString()
}
