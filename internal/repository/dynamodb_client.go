package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"recipe-genie/internal/domain"
)

const (
	skPrefixMeta    = "META#"
	skProfile       = "PROFILE#"
	defaultNewTitle = "New Chat"
	maxTitleRunes   = 30
	batchDeleteSize = 25
)

// msgTimeLayout is a fixed-width RFC3339 variant so message sort keys order
// lexicographically even when the nanosecond field has trailing zeros.
const msgTimeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrConversationNotFound reports a rename against a conversation that does
// not exist under the user partition.
var ErrConversationNotFound = errors.New("repository: conversation not found")

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Client wraps a single DynamoDB table holding all conversation state.
// Layout: PK = USER#<user_id>; conversation metadata at SK = META#<chat_id>;
// messages at SK = CHAT#<chat_id>#MSG#<timestamp>#<seq>; the user preferences
// blob at SK = PROFILE#.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a conversation store Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func userPK(userID string) string {
	return "USER#" + userID
}

func metaSK(chatID string) string {
	return skPrefixMeta + chatID
}

func msgSKPrefix(chatID string) string {
	return "CHAT#" + chatID + "#MSG#"
}

// msgSK builds a message sort key. Both messages of an exchange share one
// timestamp; seq keeps the user message (0) ahead of the reply (1).
func msgSK(chatID string, ts time.Time, seq int) string {
	return msgSKPrefix(chatID) + ts.UTC().Format(msgTimeLayout) + "#" + strconv.Itoa(seq)
}

// deriveTitle produces a conversation title from the first user message:
// the text verbatim up to 30 runes, truncated with an ellipsis beyond that.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTitleRunes {
		return text
	}
	return string(runes[:maxTitleRunes]) + "..."
}

var newChatID = func() string {
	return uuid.NewString()
}

// CreateConversation writes a fresh conversation record titled "New Chat"
// with a zero message count and returns it.
func (c *Client) CreateConversation(ctx context.Context, userID string) (domain.Conversation, error) {
	conv := domain.Conversation{
		ID:        newChatID(),
		Title:     defaultNewTitle,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      conversationItem(userID, conv),
	})
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("repository: CreateConversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns the user's conversations, most recently updated
// first, bounded by limit.
func (c *Client) ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	items, err := c.queryAll(ctx, userID, skPrefixMeta)
	if err != nil {
		return nil, fmt.Errorf("repository: ListConversations query: %w", err)
	}

	convs := make([]domain.Conversation, 0, len(items))
	for _, item := range items {
		conv, err := itemToConversation(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListConversations unmarshal: %w", err)
		}
		convs = append(convs, conv)
	}
	// SK order is by chat id; the API contract is recency.
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

// RenameConversation overwrites the title and refreshes the updated
// timestamp. Returns ErrConversationNotFound when the conversation record
// does not exist.
func (c *Client) RenameConversation(ctx context.Context, userID, chatID, title string) error {
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: metaSK(chatID)},
		},
		UpdateExpression:    aws.String("SET title = :title, updatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":title": &types.AttributeValueMemberS{Value: title},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("repository: RenameConversation: %w", err)
	}
	return nil
}

// DeleteConversation removes every message under the conversation and then
// the conversation record itself. The cascade is batched, not transactional:
// a crash mid-delete can leave orphaned messages behind.
func (c *Client) DeleteConversation(ctx context.Context, userID, chatID string) error {
	items, err := c.queryAll(ctx, userID, msgSKPrefix(chatID))
	if err != nil {
		return fmt.Errorf("repository: DeleteConversation query messages: %w", err)
	}

	for start := 0; start < len(items); start += batchDeleteSize {
		end := start + batchDeleteSize
		if end > len(items) {
			end = len(items)
		}
		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": item["PK"],
						"SK": item["SK"],
					},
				},
			})
		}
		_, err := c.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{c.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("repository: DeleteConversation batch delete: %w", err)
		}
	}

	_, err = c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: metaSK(chatID)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: DeleteConversation delete record: %w", err)
	}
	return nil
}

// RecordExchange appends the user message and assistant reply and updates the
// conversation metadata in one transaction. The first exchange assigns the
// derived title under a condition expression so it is set exactly once.
func (c *Client) RecordExchange(ctx context.Context, userID, chatID, userText, replyText string) error {
	count, err := c.getMessageCount(ctx, userID, chatID)
	if err != nil {
		return fmt.Errorf("repository: RecordExchange read count: %w", err)
	}

	now := time.Now().UTC()
	userMsg := messageItem(userID, chatID, domain.RoleUser, userText, now, 0)
	replyMsg := messageItem(userID, chatID, domain.RoleAssistant, replyText, now, 1)

	_, err = c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(c.tableName),
				Item:                userMsg,
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(c.tableName),
				Item:                replyMsg,
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			}},
			{Update: c.metaUpdate(userID, chatID, userText, now, count == 0)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: RecordExchange: %w", err)
	}
	return nil
}

// metaUpdate builds the metadata half of the exchange transaction. The first
// exchange sets the derived title and a count of one, guarded against a
// concurrent first exchange having won the race; later exchanges bump the
// counter atomically and refresh updatedAt.
func (c *Client) metaUpdate(userID, chatID, userText string, now time.Time, first bool) *types.Update {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: metaSK(chatID)},
	}
	ts := now.Format(time.RFC3339Nano)

	if first {
		return &types.Update{
			TableName: aws.String(c.tableName),
			Key:       key,
			UpdateExpression: aws.String(
				"SET title = :title, updatedAt = :now, createdAt = if_not_exists(createdAt, :now), chatId = :chat, messageCount = :one"),
			ConditionExpression: aws.String("attribute_not_exists(PK) OR messageCount = :zero"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":title": &types.AttributeValueMemberS{Value: deriveTitle(userText)},
				":now":   &types.AttributeValueMemberS{Value: ts},
				":chat":  &types.AttributeValueMemberS{Value: chatID},
				":one":   &types.AttributeValueMemberN{Value: "1"},
				":zero":  &types.AttributeValueMemberN{Value: "0"},
			},
		}
	}
	return &types.Update{
		TableName:           aws.String(c.tableName),
		Key:                 key,
		UpdateExpression:    aws.String("SET updatedAt = :now ADD messageCount :inc"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: ts},
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
	}
}

// ListMessages returns every message of the conversation in ascending
// timestamp order.
func (c *Client) ListMessages(ctx context.Context, userID, chatID string) ([]domain.Message, error) {
	items, err := c.queryAll(ctx, userID, msgSKPrefix(chatID))
	if err != nil {
		return nil, fmt.Errorf("repository: ListMessages query: %w", err)
	}

	msgs := make([]domain.Message, 0, len(items))
	for _, item := range items {
		msg, err := itemToMessage(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListMessages unmarshal: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// SaveUserPreferences upserts the opaque preferences blob on the user
// partition, materializing the user record on first write.
func (c *Client) SaveUserPreferences(ctx context.Context, userID string, prefs json.RawMessage) error {
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skProfile},
		},
		UpdateExpression: aws.String("SET preferences = :prefs"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefs": &types.AttributeValueMemberS{Value: string(prefs)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: SaveUserPreferences: %w", err)
	}
	return nil
}

// GetUserPreferences returns the stored preferences blob, or an empty JSON
// object when the user has none.
func (c *Client) GetUserPreferences(ctx context.Context, userID string) (json.RawMessage, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skProfile},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetUserPreferences: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return json.RawMessage(`{}`), nil
	}
	raw, err := strAttr(out.Item, "preferences")
	if err != nil || strings.TrimSpace(raw) == "" {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(raw), nil
}

// getMessageCount reads the persisted exchange counter with a consistent
// read; a missing record counts as zero. First-exchange detection hangs off
// this value, so a stale read must not be possible.
func (c *Client) getMessageCount(ctx context.Context, userID, chatID string) (int, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: metaSK(chatID)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	if out == nil || len(out.Item) == 0 {
		return 0, nil
	}
	return intAttr(out.Item, "messageCount")
}

// queryAll pages through every item under the user partition whose sort key
// starts with prefix.
func (c *Client) queryAll(ctx context.Context, userID, prefix string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		out, err := c.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: userPK(userID)},
				":prefix": &types.AttributeValueMemberS{Value: prefix},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func conversationItem(userID string, conv domain.Conversation) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK":           &types.AttributeValueMemberS{Value: metaSK(conv.ID)},
		"chatId":       &types.AttributeValueMemberS{Value: conv.ID},
		"title":        &types.AttributeValueMemberS{Value: conv.Title},
		"createdAt":    &types.AttributeValueMemberS{Value: conv.CreatedAt.Format(time.RFC3339Nano)},
		"updatedAt":    &types.AttributeValueMemberS{Value: conv.UpdatedAt.Format(time.RFC3339Nano)},
		"messageCount": &types.AttributeValueMemberN{Value: strconv.Itoa(conv.MessageCount)},
	}
}

func messageItem(userID, chatID, role, content string, ts time.Time, seq int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK":        &types.AttributeValueMemberS{Value: msgSK(chatID, ts, seq)},
		"chatId":    &types.AttributeValueMemberS{Value: chatID},
		"role":      &types.AttributeValueMemberS{Value: role},
		"content":   &types.AttributeValueMemberS{Value: content},
		"timestamp": &types.AttributeValueMemberS{Value: ts.Format(time.RFC3339Nano)},
	}
}

func itemToConversation(item map[string]types.AttributeValue) (domain.Conversation, error) {
	id, err := strAttr(item, "chatId")
	if err != nil {
		return domain.Conversation{}, err
	}
	title, err := strAttr(item, "title")
	if err != nil {
		return domain.Conversation{}, err
	}
	created, err := timeAttr(item, "createdAt")
	if err != nil {
		return domain.Conversation{}, err
	}
	updated, err := timeAttr(item, "updatedAt")
	if err != nil {
		return domain.Conversation{}, err
	}
	count, err := intAttr(item, "messageCount")
	if err != nil {
		return domain.Conversation{}, err
	}
	return domain.Conversation{
		ID:           id,
		Title:        title,
		CreatedAt:    created,
		UpdatedAt:    updated,
		MessageCount: count,
	}, nil
}

func itemToMessage(item map[string]types.AttributeValue) (domain.Message, error) {
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.Message{}, err
	}
	content, err := strAttr(item, "content")
	if err != nil {
		return domain.Message{}, err
	}
	ts, err := timeAttr(item, "timestamp")
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{Role: role, Content: content, Timestamp: ts}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func timeAttr(item map[string]types.AttributeValue, key string) (time.Time, error) {
	raw, err := strAttr(item, key)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return ts, nil
}
