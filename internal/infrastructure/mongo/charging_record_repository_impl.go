package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/apperror"
)

var errRecordNotFound = apperror.NotFound("charging record not found")

type ChargingRecordRepository struct {
	coll *mongo.Collection
}

func NewChargingRecordRepository(db *mongo.Database) *ChargingRecordRepository {
	return &ChargingRecordRepository{coll: db.Collection(ChargingRecordsCollection)}
}

func (r *ChargingRecordRepository) Create(ctx context.Context, rec *entity.ChargingRecord) error {
	doc := newChargingDoc(rec)
	doc.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	rec.ID = doc.ID.Hex()
	return nil
}

func (r *ChargingRecordRepository) ListAll(ctx context.Context) ([]*entity.ChargingRecord, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []chargingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.ChargingRecord, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *ChargingRecordRepository) GetByID(ctx context.Context, id string) (*entity.ChargingRecord, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, errRecordNotFound
	}
	var doc chargingDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errRecordNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ChargingRecordRepository) MarkPaid(ctx context.Context, id string) (*entity.ChargingRecord, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, errRecordNotFound
	}
	_, err = r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "isPaid", Value: bson.D{{Key: "$ne", Value: true}}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "isPaid", Value: true},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

var _ repository.ChargingRecordRepository = (*ChargingRecordRepository)(nil)
