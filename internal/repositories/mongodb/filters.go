package mongodb

import (
	"errors"
	"fmt"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func caseFilter(filter interfaces.CaseFilter) bson.M {
	query := bson.M{}
	if filter.CitizenID != nil {
		query["citizenId"] = *filter.CitizenID
	}
	return query
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// statusUpdate is the single-document $set shared by complaints and SOS alerts.
func statusUpdate(status string, officerID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"status":     status,
		"assignedTo": officerID,
		"updatedAt":  now,
	}}
}

func returnUpdated() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func nearFilter(lat, lng, maxDistance float64) bson.M {
	return bson.M{"location": bson.M{
		"$near": bson.M{
			"$geometry": bson.M{
				"type":        models.GeoJSONPoint,
				"coordinates": bson.A{lng, lat},
			},
			"$maxDistance": maxDistance,
		},
	}}
}

func categoryPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}}},
	}
}

func monthlyPipeline(since time.Time, timezone string) mongo.Pipeline {
	date := bson.M{"date": "$createdAt", "timezone": timezone}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": date},
				"month": bson.M{"$month": date},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"year":  "$_id.year",
			"month": "$_id.month",
			"count": 1,
		}}},
	}
}

func identifierFilter(userType models.UserType, identifier string) bson.M {
	if userType == models.UserTypePolice {
		return bson.M{"userType": models.UserTypePolice, "batchNo": identifier}
	}
	return bson.M{"userType": models.UserTypeCitizen, "phone": identifier}
}

// wrapFindError maps a missing document to interfaces.ErrNotFound.
func wrapFindError(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, interfaces.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
