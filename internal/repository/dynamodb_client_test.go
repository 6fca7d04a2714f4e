package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"trip-quote-agent/internal/domain"
)

type fakeDynamo struct {
	putErr      error
	deleteErr   error
	queryOut    *dynamodb.QueryOutput
	queryErr    error
	scanOuts    []*dynamodb.ScanOutput
	scanErr     error
	txErr       error
	lastPut     *dynamodb.PutItemInput
	lastDelete  *dynamodb.DeleteItemInput
	lastQueryIn *dynamodb.QueryInput
	scanInputs  []*dynamodb.ScanInput
	lastTxInput *dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPut = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDelete = in
	return &dynamodb.DeleteItemOutput{}, f.deleteErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	if f.queryOut == nil {
		return &dynamodb.QueryOutput{}, f.queryErr
	}
	return f.queryOut, f.queryErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	out := f.scanOuts[0]
	f.scanOuts = f.scanOuts[1:]
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTxInput = in
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

var fixedNow = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

func mustNewStore(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "test-table", time.Hour)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func makeDataItem(t *testing.T, key, sk string, v any, ttl int64) map[string]types.AttributeValue {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return map[string]types.AttributeValue{
		"PK":   &types.AttributeValueMemberS{Value: sessionPK(key)},
		"SK":   &types.AttributeValueMemberS{Value: sk},
		"data": &types.AttributeValueMemberS{Value: string(data)},
		"ttl":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ttl)},
	}
}

func sampleState() domain.ConversationState {
	out := civil.Date{Year: 2025, Month: time.March, Day: 15}
	return domain.ConversationState{
		Origin:       "CNF",
		Destination:  "SAO",
		OutboundDate: &out,
		IsOneWay:     true,
		Passengers:   domain.Passengers{Adults: 2, Children: 1},
	}
}

func TestLoad_HappyPath(t *testing.T) {
	live := fixedNow.Add(time.Hour).Unix()
	pending := domain.PendingQuote{State: sampleState(), CreatedAt: fixedNow}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		makeDataItem(t, "abc", skState, sampleState(), live),
		makeDataItem(t, "abc", skPending, pending, live),
	}}}
	s := mustNewStore(t, db)

	got, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "CNF", got.State.Origin)
	require.Equal(t, civil.Date{Year: 2025, Month: time.March, Day: 15}, *got.State.OutboundDate)
	require.NotNil(t, got.Pending)
	require.Equal(t, 2, got.Pending.State.Adults)
	require.Equal(t, "PK = :pk", *db.lastQueryIn.KeyConditionExpression)
	require.True(t, *db.lastQueryIn.ConsistentRead)
}

func TestLoad_EmptySession(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{})
	got, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.True(t, got.State.IsOneWay)
	require.True(t, got.State.IsEmpty())
	require.Nil(t, got.Pending)
}

func TestLoad_SkipsExpiredItems(t *testing.T) {
	expired := fixedNow.Add(-time.Minute).Unix()
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		makeDataItem(t, "abc", skState, sampleState(), expired),
	}}}
	got, err := mustNewStore(t, db).Load(context.Background(), "abc")
	require.NoError(t, err)
	require.True(t, got.State.IsEmpty())
}

func TestLoad_Errors(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{queryErr: errors.New("ResourceNotFoundException")})
	_, err := s.Load(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Load query")

	malformed := map[string]types.AttributeValue{
		"PK":   &types.AttributeValueMemberS{Value: sessionPK("abc")},
		"SK":   &types.AttributeValueMemberS{Value: skState},
		"data": &types.AttributeValueMemberS{Value: "{not json"},
	}
	s = mustNewStore(t, &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{malformed}}})
	_, err = s.Load(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Load state")

	_, err = s.Load(context.Background(), "")
	require.ErrorIs(t, err, errEmptyKey)
}

func TestSaveState_WritesItem(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewStore(t, db)

	require.NoError(t, s.SaveState(context.Background(), "abc", sampleState()))
	item := db.lastPut.Item
	require.Equal(t, "SESSION#abc", item["PK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, skState, item["SK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, fmt.Sprintf("%d", fixedNow.Add(time.Hour).Unix()), item["ttl"].(*types.AttributeValueMemberN).Value)

	var decoded domain.ConversationState
	require.NoError(t, json.Unmarshal([]byte(item["data"].(*types.AttributeValueMemberS).Value), &decoded))
	require.Equal(t, "SAO", decoded.Destination)
}

func TestSavePending_DynamoError(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")})
	err := s.SavePending(context.Background(), "abc", domain.PendingQuote{State: sampleState()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "SavePending")
}

func TestDeletePending(t *testing.T) {
	db := &fakeDynamo{}
	require.NoError(t, mustNewStore(t, db).DeletePending(context.Background(), "abc"))
	require.Equal(t, skPending, db.lastDelete.Key["SK"].(*types.AttributeValueMemberS).Value)

	db = &fakeDynamo{deleteErr: errors.New("boom")}
	err := mustNewStore(t, db).DeletePending(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "DeletePending")
}

func TestClear_DeletesBothItemsInOneTransaction(t *testing.T) {
	db := &fakeDynamo{}
	require.NoError(t, mustNewStore(t, db).Clear(context.Background(), "abc"))
	require.Len(t, db.lastTxInput.TransactItems, 2)
	require.Equal(t, skState, db.lastTxInput.TransactItems[0].Delete.Key["SK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, skPending, db.lastTxInput.TransactItems[1].Delete.Key["SK"].(*types.AttributeValueMemberS).Value)

	db = &fakeDynamo{txErr: errors.New("transaction canceled")}
	err := mustNewStore(t, db).Clear(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Clear")
}

func TestActiveSessions_FollowsPagination(t *testing.T) {
	db := &fakeDynamo{scanOuts: []*dynamodb.ScanOutput{
		{Count: 3, LastEvaluatedKey: map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "SESSION#x"}}},
		{Count: 2},
	}}
	n, err := mustNewStore(t, db).ActiveSessions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Len(t, db.scanInputs, 2)
	require.Equal(t, types.SelectCount, db.scanInputs[0].Select)
	require.NotNil(t, db.scanInputs[1].ExclusiveStartKey)
}

func TestActiveSessions_ScanError(t *testing.T) {
	_, err := mustNewStore(t, &fakeDynamo{scanErr: errors.New("boom")}).ActiveSessions(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ActiveSessions")
}

func TestSessionPK(t *testing.T) {
	require.Equal(t, "SESSION#5511999990000", sessionPK("5511999990000"))
}

func TestNewDynamoStore_NilAPI(t *testing.T) {
	_, err := NewDynamoStore(nil, "test-table", time.Hour)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNewDynamoStore_EmptyTableName(t *testing.T) {
	_, err := NewDynamoStore(&fakeDynamo{}, " ", time.Hour)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
