package store

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"event-driven-flow/internal/external"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore is a Store backed by a DynamoDB table
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore creates a store for the given table
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// PutItem implements Store.PutItem
func (s *DynamoStore) PutItem(ctx context.Context, item Item) error {
	if item.ID() == "" {
		return NewStoreError("PutItem", "", ErrInvalidKey)
	}

	av, err := attributevalue.MarshalMap(map[string]string(item))
	if err != nil {
		return NewStoreError("PutItem", item.ID(), err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return NewStoreError("PutItem", item.ID(), external.NewError("PutItem", s.table, err))
	}
	return nil
}

// GetItem implements Store.GetItem
func (s *DynamoStore) GetItem(ctx context.Context, id string) (Item, error) {
	if id == "" {
		return nil, NewStoreError("GetItem", id, ErrInvalidKey)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyOf(id),
	})
	if err != nil {
		return nil, NewStoreError("GetItem", id, external.NewError("GetItem", s.table, err))
	}

	if out == nil || len(out.Item) == 0 {
		return nil, NewStoreError("GetItem", id, ErrItemNotFound)
	}

	item := make(map[string]string)
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, NewStoreError("GetItem", id, err)
	}
	return Item(item), nil
}

// UpdateItem implements Store.UpdateItem with a SET update expression
func (s *DynamoStore) UpdateItem(ctx context.Context, id string, set map[string]string) error {
	if id == "" {
		return NewStoreError("UpdateItem", id, ErrInvalidKey)
	}
	if len(set) == 0 {
		return NewStoreError("UpdateItem", id, ErrEmptyUpdate)
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	var update expression.UpdateBuilder
	for _, name := range names {
		update = update.Set(expression.Name(name), expression.Value(set[name]))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return NewStoreError("UpdateItem", id, err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       keyOf(id),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return NewStoreError("UpdateItem", id, external.NewError("UpdateItem", s.table, err))
	}
	return nil
}

// Close implements Store.Close
func (s *DynamoStore) Close() error {
	return nil
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		KeyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}
