package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gramsetu-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongo builds a Store over db. Multi-document transactions need a
// replica set, so they are only used when transactions is true.
func NewMongo(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{
		Issues:      &mongoIssues{coll: db.Collection(IssuesCollection)},
		Assignments: &mongoAssignments{coll: db.Collection(AssignmentsCollection)},
		Users:       &mongoUsers{coll: db.Collection(UsersCollection)},
		Tx:          &mongoTransactor{client: client, enabled: transactions},
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

type mongoIssues struct {
	coll *mongo.Collection
}

func (s *mongoIssues) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	// $push fails on a null array, so never store one.
	if issue.Votes == nil {
		issue.Votes = []primitive.ObjectID{}
	}
	if issue.Images == nil {
		issue.Images = []string{}
	}
	if _, err := s.coll.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *mongoIssues) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return &issue, nil
}

func (s *mongoIssues) ListIssues(ctx context.Context) ([]*models.Issue, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []*models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (s *mongoIssues) AddVote(ctx context.Context, id, citizen primitive.ObjectID, at time.Time) (*models.Issue, error) {
	filter := bson.M{"_id": id, "votes": bson.M{"$ne": citizen}}
	update := bson.M{
		"$push": bson.M{"votes": citizen},
		"$set":  bson.M{"updatedAt": at},
	}

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrConflict(ctx, id, models.ErrAlreadyVoted)
	}
	if err != nil {
		return nil, fmt.Errorf("add vote: %w", err)
	}
	return &issue, nil
}

func (s *mongoIssues) TransitionIssue(ctx context.Context, id primitive.ObjectID, t Transition) (*models.Issue, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": models.TransitionSources(t.To)}}
	set := bson.M{"status": t.To, "updatedAt": t.At}
	if t.SetAssignment {
		set["priority"] = t.Priority
		set["assignedTo"] = t.AssignedTo
	}

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, returnAfter()).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrConflict(ctx, id, models.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("transition issue: %w", err)
	}
	return &issue, nil
}

// missOrConflict tells an unknown id apart from a guarded update that
// matched nothing.
func (s *mongoIssues) missOrConflict(ctx context.Context, id primitive.ObjectID, conflict error) error {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count issue: %w", err)
	}
	if n == 0 {
		return models.ErrIssueNotFound
	}
	return conflict
}

type mongoAssignments struct {
	coll *mongo.Collection
}

func (s *mongoAssignments) CreateAssignment(ctx context.Context, a *models.GramSevakAssignment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *mongoAssignments) GetAssignment(ctx context.Context, id primitive.ObjectID) (*models.GramSevakAssignment, error) {
	var a models.GramSevakAssignment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &a, nil
}

func (s *mongoAssignments) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]*models.GramSevakAssignment, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AssignedKey != "" {
		query["assignedKey"] = filter.AssignedKey
	}

	cursor, err := s.coll.Find(ctx, query, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("find assignments: %w", err)
	}
	defer cursor.Close(ctx)

	list := []*models.GramSevakAssignment{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode assignments: %w", err)
	}
	return list, nil
}

func (s *mongoAssignments) UpdateAssignment(ctx context.Context, id primitive.ObjectID, u models.AssignmentUpdate, at time.Time) (*models.GramSevakAssignment, error) {
	filter := bson.M{"_id": id}
	set := bson.M{"updatedAt": at}
	push := bson.M{}

	if u.Status != nil {
		filter["status"] = models.AssignmentInProgress
		set["status"] = *u.Status
	}
	if len(u.Comments) > 0 {
		push["comments"] = bson.M{"$each": u.Comments}
	}
	if len(u.ProofPhotos) > 0 {
		push["proofPhotos"] = bson.M{"$each": u.ProofPhotos}
	}

	update := bson.M{"$set": set}
	if len(push) > 0 {
		update["$push"] = push
	}

	var a models.GramSevakAssignment
	err := s.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := s.coll.CountDocuments(ctx, bson.M{"_id": id})
		if cerr != nil {
			return nil, fmt.Errorf("count assignment: %w", cerr)
		}
		if n == 0 {
			return nil, models.ErrAssignmentNotFound
		}
		return nil, models.ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	return &a, nil
}

type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateUser
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *mongoUsers) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoUsers) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"mobile": mobile})
}

func (s *mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

type mongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

func (t *mongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
