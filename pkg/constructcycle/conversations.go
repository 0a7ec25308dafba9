package constructcycle

import (
	"context"
	"fmt"
)

const (
	conversationsPath     = "/conversations/"
	conversationStartPath = "/conversations/start/"
	sendMessagePath       = "/conversations/send-message/"
	unreadCountPath       = "/conversations/unread-count/"
)

// conversationService implements the ConversationService interface
type conversationService struct {
	client *Client
}

// List retrieves the caller's conversations
func (s *conversationService) List(ctx context.Context) (*Page[Conversation], error) {
	var result Page[Conversation]
	if err := s.client.Get(ctx, conversationsPath, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Start opens a conversation about a product. The backend reuses an existing
// thread between the same buyer and product.
func (s *conversationService) Start(ctx context.Context, productID int64, messageText string) (*Conversation, error) {
	body := map[string]interface{}{
		"product_id":   productID,
		"message_text": messageText,
	}

	var conversation Conversation
	if err := s.client.Post(ctx, conversationStartPath, body, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// Get retrieves a conversation with its messages
func (s *conversationService) Get(ctx context.Context, conversationID int64) (*Conversation, error) {
	var conversation Conversation
	if err := s.client.Get(ctx, fmt.Sprintf("/conversations/%d/", conversationID), &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// SendMessage posts a message to a conversation
func (s *conversationService) SendMessage(ctx context.Context, conversationID int64, messageText string) (*Message, error) {
	body := map[string]interface{}{
		"conversation": conversationID,
		"message_text": messageText,
	}

	var message Message
	if err := s.client.Post(ctx, sendMessagePath, body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Messages lists the messages of a conversation
func (s *conversationService) Messages(ctx context.Context, conversationID int64) (*Page[Message], error) {
	var result Page[Message]
	if err := s.client.Get(ctx, fmt.Sprintf("/conversations/%d/messages/", conversationID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkRead marks the other side's messages as read
func (s *conversationService) MarkRead(ctx context.Context, conversationID int64) error {
	return s.client.Post(ctx, fmt.Sprintf("/conversations/%d/mark-read/", conversationID), nil, nil)
}

// UnreadCount returns the unread message badge
func (s *conversationService) UnreadCount(ctx context.Context) (*UnreadCount, error) {
	var count UnreadCount
	if err := s.client.Get(ctx, unreadCountPath, &count); err != nil {
		return nil, err
	}
	return &count, nil
}
