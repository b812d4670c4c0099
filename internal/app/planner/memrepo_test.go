package planner_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	activitystore "github.com/dalemusser/liderplan/internal/app/store/activities"
	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInjected = errors.New("injected failure")

// memDB backs the in-memory repositories. Maps hold values so snapshots
// can be taken with a shallow copy.
type memDB struct {
	mu         sync.Mutex
	plans      map[primitive.ObjectID]models.Plan
	activities map[primitive.ObjectID]models.Activity
	users      map[primitive.ObjectID]string

	// failInsertAfter makes the Nth activity insert (1-based) fail.
	failInsertAfter int
	inserts         int
	seq             time.Duration
}

func newMemDB() *memDB {
	return &memDB{
		plans:      map[primitive.ObjectID]models.Plan{},
		activities: map[primitive.ObjectID]models.Activity{},
		users:      map[primitive.ObjectID]string{},
	}
}

func (m *memDB) stamp() time.Time {
	m.seq += time.Second
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(m.seq)
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}

/* ---------------------------- unit of work ---------------------------- */

type memUoW struct{ db *memDB }

func (u memUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.db.mu.Lock()
	plans := make(map[primitive.ObjectID]models.Plan, len(u.db.plans))
	for k, v := range u.db.plans {
		v.ActivityIDs = cloneIDs(v.ActivityIDs)
		plans[k] = v
	}
	acts := make(map[primitive.ObjectID]models.Activity, len(u.db.activities))
	for k, v := range u.db.activities {
		acts[k] = v
	}
	u.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		u.db.mu.Lock()
		u.db.plans = plans
		u.db.activities = acts
		u.db.mu.Unlock()
		return err
	}
	return nil
}

/* ------------------------------- plans -------------------------------- */

type memPlans struct{ db *memDB }

func (r memPlans) Insert(_ context.Context, p models.Plan) (models.Plan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.ActivityIDs == nil {
		p.ActivityIDs = []primitive.ObjectID{}
	}
	p.CreatedAt = r.db.stamp()
	p.UpdatedAt = p.CreatedAt
	r.db.plans[p.ID] = p
	return p, nil
}

func (r memPlans) GetByID(_ context.Context, id primitive.ObjectID) (models.Plan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.plans[id]
	if !ok {
		return models.Plan{}, planstore.ErrNotFound
	}
	p.ActivityIDs = cloneIDs(p.ActivityIDs)
	return p, nil
}

func (r memPlans) list(keep func(models.Plan) bool) []models.Plan {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Plan
	for _, p := range r.db.plans {
		if keep(p) {
			p.ActivityIDs = cloneIDs(p.ActivityIDs)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memPlans) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Plan, error) {
	return r.list(func(p models.Plan) bool { return p.OwnerID == ownerID }), nil
}

func (r memPlans) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (models.Plan, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return models.Plan{}, err
	}
	if p.OwnerID != ownerID {
		return models.Plan{}, planstore.ErrNotFound
	}
	return p, nil
}

func (r memPlans) mutate(id primitive.ObjectID, fn func(p *models.Plan)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.plans[id]
	if !ok {
		return planstore.ErrNotFound
	}
	fn(&p)
	r.db.plans[id] = p
	return nil
}

func (r memPlans) UpdateHeader(_ context.Context, id primitive.ObjectID, h planstore.Header) error {
	return r.mutate(id, func(p *models.Plan) {
		if h.Name != nil {
			p.Name = *h.Name
		}
		if h.Project != nil {
			p.Project = *h.Project
		}
		if h.Goal != nil {
			p.Goal = *h.Goal
		}
		if h.Origin != nil {
			p.Origin = *h.Origin
		}
		if h.SubOrigin != nil {
			p.SubOrigin = *h.SubOrigin
		}
	})
}

func (r memPlans) SetActivities(_ context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Plan) { p.ActivityIDs = cloneIDs(ids) })
}

func (r memPlans) AppendActivity(_ context.Context, id, activityID primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Plan) { p.ActivityIDs = append(cloneIDs(p.ActivityIDs), activityID) })
}

func (r memPlans) PullActivity(_ context.Context, id, activityID primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Plan) {
		out := []primitive.ObjectID{}
		for _, a := range p.ActivityIDs {
			if a != activityID {
				out = append(out, a)
			}
		}
		p.ActivityIDs = out
	})
}

func (r memPlans) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.plans[id]; !ok {
		return planstore.ErrNotFound
	}
	delete(r.db.plans, id)
	return nil
}

/* ----------------------------- activities ----------------------------- */

type memActivities struct{ db *memDB }

func (r memActivities) Insert(_ context.Context, a models.Activity) (models.Activity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.inserts++
	if r.db.failInsertAfter > 0 && r.db.inserts >= r.db.failInsertAfter {
		return models.Activity{}, errInjected
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.Comments == nil {
		a.Comments = []models.Comment{}
	}
	if a.Evidence == nil {
		a.Evidence = []models.Evidence{}
	}
	a.CreatedAt = r.db.stamp()
	a.UpdatedAt = a.CreatedAt
	r.db.activities[a.ID] = a
	return a, nil
}

func (r memActivities) GetByID(_ context.Context, id primitive.ObjectID) (models.Activity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.activities[id]
	if !ok {
		return models.Activity{}, activitystore.ErrNotFound
	}
	return a, nil
}

func (r memActivities) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Activity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Activity
	for _, id := range ids {
		if a, ok := r.db.activities[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memActivities) ListByResponsibleUser(_ context.Context, userID primitive.ObjectID) ([]models.Activity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Activity
	for _, a := range r.db.activities {
		if a.Responsible.Includes(userID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memActivities) Save(_ context.Context, a models.Activity) (models.Activity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.activities[a.ID]
	if !ok {
		return models.Activity{}, activitystore.ErrNotFound
	}
	a.Comments = cur.Comments
	a.Evidence = cur.Evidence
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = r.db.stamp()
	r.db.activities[a.ID] = a
	return a, nil
}

func (r memActivities) PushComment(_ context.Context, id primitive.ObjectID, c models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.activities[id]
	if !ok {
		return activitystore.ErrNotFound
	}
	a.Comments = append(append([]models.Comment{}, a.Comments...), c)
	r.db.activities[id] = a
	return nil
}

func (r memActivities) PushEvidence(_ context.Context, id primitive.ObjectID, e models.Evidence) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.activities[id]
	if !ok {
		return activitystore.ErrNotFound
	}
	a.Evidence = append(append([]models.Evidence{}, a.Evidence...), e)
	r.db.activities[id] = a
	return nil
}

func (r memActivities) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.activities[id]; !ok {
		return activitystore.ErrNotFound
	}
	delete(r.db.activities, id)
	return nil
}

func (r memActivities) DeleteMany(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.db.activities[id]; ok {
			delete(r.db.activities, id)
			n++
		}
	}
	return n, nil
}

func (r memActivities) DeleteByPlan(_ context.Context, planID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, a := range r.db.activities {
		if a.PlanID == planID {
			delete(r.db.activities, id)
			n++
		}
	}
	return n, nil
}

/* -------------------------------- users ------------------------------- */

type memUsers struct{ db *memDB }

func (r memUsers) NamesByID(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[primitive.ObjectID]string{}
	for _, id := range ids {
		if n, ok := r.db.users[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (r memUsers) CountExisting(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.db.users[id]; ok {
			n++
		}
	}
	return n, nil
}
