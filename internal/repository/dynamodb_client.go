package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"trip-quote-agent/internal/domain"
)

const (
	skState   = "STATE#"
	skPending = "PENDING#"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore keeps one item per session for the state and one for the
// pending quote under the same partition key. Expiry relies on the table's
// TTL attribute.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewDynamoStore creates a DynamoDB-backed session store.
func NewDynamoStore(api dynamodbAPI, tableName string, ttl time.Duration) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &DynamoStore{api: api, tableName: tableName, ttl: ttl, now: time.Now}, nil
}

// sessionPK returns the DynamoDB partition key for a session.
func sessionPK(key string) string {
	return "SESSION#" + key
}

func (c *DynamoStore) keyOf(key, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sessionPK(key)},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// Load reads the state and pending items of a session with one query.
func (c *DynamoStore) Load(ctx context.Context, key string) (domain.Session, error) {
	if key == "" {
		return domain.Session{}, errEmptyKey
	}
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: sessionPK(key)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("repository: Load query: %w", err)
	}

	s := domain.Session{State: domain.NewConversationState()}
	nowUnix := c.now().Unix()
	for _, item := range out.Items {
		// Expired items linger until the TTL sweeper removes them.
		if exp, err := intAttr(item, "ttl"); err == nil && int64(exp) <= nowUnix {
			continue
		}
		sk, err := strAttr(item, "SK")
		if err != nil {
			return domain.Session{}, fmt.Errorf("repository: Load: %w", err)
		}
		switch sk {
		case skState:
			if err := decodeData(item, &s.State); err != nil {
				return domain.Session{}, fmt.Errorf("repository: Load state: %w", err)
			}
		case skPending:
			var p domain.PendingQuote
			if err := decodeData(item, &p); err != nil {
				return domain.Session{}, fmt.Errorf("repository: Load pending: %w", err)
			}
			s.Pending = &p
		}
	}
	return s, nil
}

// SaveState writes or replaces the state item.
func (c *DynamoStore) SaveState(ctx context.Context, key string, state domain.ConversationState) error {
	item, err := c.item(key, skState, state)
	if err != nil {
		return fmt.Errorf("repository: SaveState: %w", err)
	}
	if _, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(c.tableName), Item: item}); err != nil {
		return fmt.Errorf("repository: SaveState: %w", err)
	}
	return nil
}

// SavePending writes or replaces the pending quote item.
func (c *DynamoStore) SavePending(ctx context.Context, key string, pending domain.PendingQuote) error {
	item, err := c.item(key, skPending, pending)
	if err != nil {
		return fmt.Errorf("repository: SavePending: %w", err)
	}
	if _, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(c.tableName), Item: item}); err != nil {
		return fmt.Errorf("repository: SavePending: %w", err)
	}
	return nil
}

func (c *DynamoStore) DeletePending(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.keyOf(key, skPending),
	})
	if err != nil {
		return fmt.Errorf("repository: DeletePending: %w", err)
	}
	return nil
}

// Clear deletes the state and pending items in one transaction.
func (c *DynamoStore) Clear(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{TableName: aws.String(c.tableName), Key: c.keyOf(key, skState)}},
			{Delete: &types.Delete{TableName: aws.String(c.tableName), Key: c.keyOf(key, skPending)}},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Clear: %w", err)
	}
	return nil
}

// ActiveSessions counts unexpired state items. It scans the table and is
// meant for the health endpoint only.
func (c *DynamoStore) ActiveSessions(ctx context.Context) (int, error) {
	total := 0
	var start map[string]types.AttributeValue
	for {
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(c.tableName),
			Select:           types.SelectCount,
			FilterExpression: aws.String("SK = :sk AND #ttl > :now"),
			ExpressionAttributeNames: map[string]string{
				"#ttl": "ttl",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sk":  &types.AttributeValueMemberS{Value: skState},
				":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(c.now().Unix(), 10)},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return 0, fmt.Errorf("repository: ActiveSessions scan: %w", err)
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		start = out.LastEvaluatedKey
	}
}

func (c *DynamoStore) item(key, sk string, v any) (map[string]types.AttributeValue, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	now := c.now().UTC()
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: sessionPK(key)},
		"SK":         &types.AttributeValueMemberS{Value: sk},
		"sessionKey": &types.AttributeValueMemberS{Value: key},
		"data":       &types.AttributeValueMemberS{Value: string(data)},
		"updatedAt":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ttl":        &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(c.ttl).Unix(), 10)},
	}, nil
}

func decodeData(item map[string]types.AttributeValue, v any) error {
	data, err := strAttr(item, "data")
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), v)
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
