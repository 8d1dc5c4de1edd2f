package s3

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/hupe1980/topovec/blobstore"
)

// versionsDir holds the immutable per-version blobs inside the backing store.
const versionsDir = "versions/"

// DDBCommitStore implements blobstore.Store with versioned models: every
// Put writes a new immutable blob and then publishes it through a DynamoDB
// conditional write. Open always resolves the latest committed version,
// so readers never observe a partially written model and concurrent
// writers cannot silently overwrite each other.
//
// Table schema:
//   - Partition key: base_uri (string) - the store URI joined with the model name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name topovec-models \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	blobs     blobstore.Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

var _ blobstore.ConditionalStore = (*DDBCommitStore)(nil)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when another writer committed the
// same version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Version describes one committed model version.
type Version struct {
	Number   uint64
	BlobPath string
}

// NewDDBCommitStore creates a new commit store. Version blobs are written to
// blobs (typically a *Store); baseURI (e.g. "s3://bucket/prefix") namespaces
// the partition keys so several stores can share one table.
func NewDDBCommitStore(blobs blobstore.Store, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		blobs:     blobs,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   strings.TrimSuffix(baseURI, "/") + "/",
	}
}

// NewDDBCommitStoreFromConfig wires an S3 Store and a DynamoDB client built
// from the same AWS configuration.
func NewDDBCommitStoreFromConfig(cfg aws.Config, bucket, prefix, tableName string) *DDBCommitStore {
	store := NewStore(newS3Client(cfg), bucket, prefix)
	return NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), tableName, store.URI(""))
}

func (s *DDBCommitStore) partition(name string) string {
	return s.baseURI + name
}

// Open opens the latest committed version of name.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	v, err := s.Latest(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.blobs.Open(ctx, v.BlobPath)
}

// OpenVersion opens a specific committed version of name.
func (s *DDBCommitStore) OpenVersion(ctx context.Context, name string, version uint64) (blobstore.Blob, error) {
	resp, err := s.ddbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.partition(name)},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if len(resp.Item) == 0 {
		return nil, fmt.Errorf("%w: %s version %d", blobstore.ErrNotFound, name, version)
	}
	v, err := parseVersion(resp.Item)
	if err != nil {
		return nil, err
	}
	return s.blobs.Open(ctx, v.BlobPath)
}

// Put writes data as the next version of name.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.commit(ctx, name, data, false)
	return err
}

// PutIfNotExists commits data as version 1 of name. It fails with an error
// satisfying errors.Is(err, blobstore.ErrExists) if any version exists.
func (s *DDBCommitStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	_, err := s.commit(ctx, name, data, true)
	return err
}

// Commit writes data as the next version of name and returns the version.
func (s *DDBCommitStore) Commit(ctx context.Context, name string, data []byte) (Version, error) {
	return s.commit(ctx, name, data, false)
}

func (s *DDBCommitStore) commit(ctx context.Context, name string, data []byte, mustBeFirst bool) (Version, error) {
	current, err := s.latest(ctx, name)
	if err != nil {
		return Version{}, err
	}
	if mustBeFirst && current.Number != 0 {
		return Version{}, fmt.Errorf("%w: %s", blobstore.ErrExists, name)
	}

	v := Version{
		Number: current.Number + 1,
		// A unique path per attempt keeps a losing writer from clobbering
		// the winner's blob.
		BlobPath: fmt.Sprintf("%s%s/%020d-%s", versionsDir, name, current.Number+1, uuid.NewString()),
	}
	if err := s.blobs.Put(ctx, v.BlobPath, data); err != nil {
		return Version{}, err
	}

	// Conditional put: only succeed if this version doesn't exist yet
	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":  &types.AttributeValueMemberS{Value: s.partition(name)},
			"version":   &types.AttributeValueMemberN{Value: strconv.FormatUint(v.Number, 10)},
			"blob_path": &types.AttributeValueMemberS{Value: v.BlobPath},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		_ = s.blobs.Delete(ctx, v.BlobPath)
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			if mustBeFirst {
				return Version{}, fmt.Errorf("%w: %s", blobstore.ErrExists, name)
			}
			return Version{}, ErrConcurrentModification
		}
		return Version{}, fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}
	return v, nil
}

// Latest returns the latest committed version of name.
func (s *DDBCommitStore) Latest(ctx context.Context, name string) (Version, error) {
	v, err := s.latest(ctx, name)
	if err != nil {
		return Version{}, err
	}
	if v.Number == 0 {
		return Version{}, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
	}
	return v, nil
}

// latest queries DynamoDB for the newest version. A zero Version means none.
func (s *DDBCommitStore) latest(ctx context.Context, name string) (Version, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.partition(name)},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return Version{}, fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	if len(resp.Items) == 0 {
		return Version{}, nil
	}
	return parseVersion(resp.Items[0])
}

// Versions returns every committed version of name in ascending order.
func (s *DDBCommitStore) Versions(ctx context.Context, name string) ([]Version, error) {
	var (
		versions []Version
		startKey map[string]types.AttributeValue
	)
	for {
		resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("base_uri = :uri"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uri": &types.AttributeValueMemberS{Value: s.partition(name)},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range resp.Items {
			v, err := parseVersion(item)
			if err != nil {
				return nil, err
			}
			versions = append(versions, v)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		startKey = resp.LastEvaluatedKey
	}
	slices.SortFunc(versions, func(a, b Version) int {
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	})
	return versions, nil
}

// Delete removes every version of name, blobs first.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	versions, err := s.Versions(ctx, name)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := s.blobs.Delete(ctx, v.BlobPath); err != nil {
			return err
		}
		_, err := s.ddbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"base_uri": &types.AttributeValueMemberS{Value: s.partition(name)},
				"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(v.Number, 10)},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete version %d from DynamoDB: %w", v.Number, err)
		}
	}
	return nil
}

// List returns the names of models with at least one stored version blob.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	paths, err := s.blobs.List(ctx, versionsDir+prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range paths {
		rel := strings.TrimPrefix(p, versionsDir)
		i := strings.LastIndexByte(rel, '/')
		if i <= 0 {
			continue
		}
		names = append(names, rel[:i])
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func parseVersion(item map[string]types.AttributeValue) (Version, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Version{}, errors.New("invalid version attribute in DynamoDB")
	}
	pathAttr, ok := item["blob_path"].(*types.AttributeValueMemberS)
	if !ok {
		return Version{}, errors.New("invalid blob_path attribute in DynamoDB")
	}
	n, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("failed to parse version: %w", err)
	}
	return Version{Number: n, BlobPath: pathAttr.Value}, nil
}
