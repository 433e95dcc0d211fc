package services

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"webanalytics/model"
)

const projectsCollection = "projects"

// FirestoreScheduleRepository stores each schedule embedded in its project
// document under the "schedule" map field.
type FirestoreScheduleRepository struct {
	client *firestore.Client
}

func NewFirestoreScheduleRepository(client *firestore.Client) *FirestoreScheduleRepository {
	return &FirestoreScheduleRepository{client: client}
}

func (r *FirestoreScheduleRepository) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	doc, err := r.client.Collection(projectsCollection).Doc(projectID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	var project model.Project
	if err := doc.DataTo(&project); err != nil {
		return nil, err
	}
	project.ProjectID = doc.Ref.ID
	return &project, nil
}

func (r *FirestoreScheduleRepository) ListProjects(ctx context.Context) ([]model.Project, error) {
	iter := r.client.Collection(projectsCollection).Documents(ctx)

	var projects []model.Project
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var project model.Project
		if err := doc.DataTo(&project); err != nil {
			return nil, err
		}
		project.ProjectID = doc.Ref.ID
		projects = append(projects, project)
	}

	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// AppendHistoryAndUpdate applies the field mutation and the history append in
// one transaction, so a concurrent writer can never observe the fields updated
// without the matching history entry.
func (r *FirestoreScheduleRepository) AppendHistoryAndUpdate(ctx context.Context, projectID string, mut ScheduleMutation, event model.ScheduleEvent) error {
	docRef := r.client.Collection(projectsCollection).Doc(projectID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrProjectNotFound
			}
			return err
		}
		if !doc.Exists() {
			return ErrProjectNotFound
		}

		// The history array is read, appended to and written back whole.
		// ArrayUnion has set semantics and would swallow an event identical
		// to one already recorded.
		var project model.Project
		if err := doc.DataTo(&project); err != nil {
			return err
		}
		history := []model.ScheduleEvent{}
		if project.Schedule != nil {
			history = project.Schedule.History
		}
		history = append(history, event)

		var updates []firestore.Update
		if mut.Phase != nil {
			updates = append(updates, firestore.Update{Path: "schedule.currentPhase", Value: *mut.Phase})
		}
		if mut.Status != nil {
			updates = append(updates, firestore.Update{Path: "schedule.currentStatus", Value: *mut.Status})
		}
		if mut.Progress != nil {
			updates = append(updates, firestore.Update{Path: "schedule.progress", Value: *mut.Progress})
		}
		if mut.Deadline != nil {
			updates = append(updates, firestore.Update{Path: "schedule.deadline", Value: *mut.Deadline})
		}
		updates = append(updates, firestore.Update{Path: "schedule.history", Value: history})

		return tx.Update(docRef, updates)
	})
}
