// Package memory is an in-process persistence backend. It enforces the same
// uniqueness rules as the relational schema and hands out copies so callers
// cannot mutate stored rows.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"plantid/internal/model"
	"plantid/internal/repository"
)

type DB struct {
	mu sync.RWMutex

	now func() time.Time

	users           map[uint]model.User
	identifications map[uint]model.PlantIdentification
	diagnoses       map[uint]model.PlantDisease
	savedPlants     map[uint]model.UserSavedPlant
	contacts        map[uint]model.ContactMessage

	seq map[string]uint
}

func New() *DB {
	return &DB{
		now:             time.Now,
		users:           map[uint]model.User{},
		identifications: map[uint]model.PlantIdentification{},
		diagnoses:       map[uint]model.PlantDisease{},
		savedPlants:     map[uint]model.UserSavedPlant{},
		contacts:        map[uint]model.ContactMessage{},
		seq:             map[string]uint{},
	}
}

// NewStore returns a repository.Store whose backends share one DB.
func NewStore() (repository.Store, *DB) {
	db := New()
	return repository.Store{
		Users:           userRepo{db},
		Identifications: identificationRepo{db},
		Diagnoses:       diagnosisRepo{db},
		SavedPlants:     savedPlantRepo{db},
		ContactMessages: contactRepo{db},
	}, db
}

func (db *DB) nextID(table string) uint {
	db.seq[table]++
	return db.seq[table]
}

// ContactMessages returns every stored contact message ordered by id.
func (db *DB) ContactMessages() []model.ContactMessage {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]model.ContactMessage, 0, len(db.contacts))
	for _, m := range db.contacts {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count reports the number of rows in a table: users, identifications,
// diagnoses, saved_plants or contact_messages.
func (db *DB) Count(table string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	switch table {
	case "users":
		return len(db.users)
	case "identifications":
		return len(db.identifications)
	case "diagnoses":
		return len(db.diagnoses)
	case "saved_plants":
		return len(db.savedPlants)
	case "contact_messages":
		return len(db.contacts)
	}
	return 0
}

type userRepo struct{ db *DB }

func (r userRepo) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("create user failed: %w", repository.ErrDuplicateKey)
		}
	}
	now := r.db.now()
	user.ID = r.db.nextID("users")
	user.CreatedAt = now
	user.UpdatedAt = now
	r.db.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, id uint, update repository.UserUpdate) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	for otherID, other := range r.db.users {
		if otherID == id {
			continue
		}
		if update.Username != nil && other.Username == *update.Username {
			return nil, fmt.Errorf("update user failed: %w", repository.ErrDuplicateKey)
		}
		if update.Email != nil && strings.EqualFold(other.Email, *update.Email) {
			return nil, fmt.Errorf("update user failed: %w", repository.ErrDuplicateKey)
		}
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.FirstName != nil {
		u.FirstName = cloneString(update.FirstName)
	}
	if update.LastName != nil {
		u.LastName = cloneString(update.LastName)
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	u.UpdatedAt = r.db.now()
	r.db.users[id] = u
	return &u, nil
}

type identificationRepo struct{ db *DB }

func (r identificationRepo) Create(_ context.Context, ident *model.PlantIdentification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ident.ID = r.db.nextID("identifications")
	ident.CreatedAt = r.db.now()
	r.db.identifications[ident.ID] = cloneIdentification(*ident)
	return nil
}

func (r identificationRepo) GetByID(_ context.Context, id uint) (*model.PlantIdentification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ident, ok := r.db.identifications[id]
	if !ok {
		return nil, nil
	}
	out := cloneIdentification(ident)
	return &out, nil
}

func (r identificationRepo) ListByUserID(_ context.Context, userID uint) ([]model.PlantIdentification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	list := []model.PlantIdentification{}
	for _, ident := range r.db.identifications {
		if ident.UserID != nil && *ident.UserID == userID {
			list = append(list, cloneIdentification(ident))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return newer(list[i].CreatedAt, list[i].ID, list[j].CreatedAt, list[j].ID)
	})
	return list, nil
}

type diagnosisRepo struct{ db *DB }

func (r diagnosisRepo) Create(_ context.Context, diagnosis *model.PlantDisease) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	diagnosis.ID = r.db.nextID("diagnoses")
	diagnosis.CreatedAt = r.db.now()
	r.db.diagnoses[diagnosis.ID] = cloneDiagnosis(*diagnosis)
	return nil
}

func (r diagnosisRepo) GetByID(_ context.Context, id uint) (*model.PlantDisease, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	d, ok := r.db.diagnoses[id]
	if !ok {
		return nil, nil
	}
	out := cloneDiagnosis(d)
	return &out, nil
}

func (r diagnosisRepo) ListByUserID(_ context.Context, userID uint) ([]model.PlantDisease, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	list := []model.PlantDisease{}
	for _, d := range r.db.diagnoses {
		if d.UserID != nil && *d.UserID == userID {
			list = append(list, cloneDiagnosis(d))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return newer(list[i].CreatedAt, list[i].ID, list[j].CreatedAt, list[j].ID)
	})
	return list, nil
}

type savedPlantRepo struct{ db *DB }

func (r savedPlantRepo) Create(_ context.Context, saved *model.UserSavedPlant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if saved.ImageURL != nil {
		for _, s := range r.db.savedPlants {
			if s.UserID == saved.UserID && s.ImageURL != nil && *s.ImageURL == *saved.ImageURL {
				return fmt.Errorf("create saved plant failed: %w", repository.ErrDuplicateKey)
			}
		}
	}
	saved.ID = r.db.nextID("saved_plants")
	saved.SavedAt = r.db.now()
	r.db.savedPlants[saved.ID] = cloneSavedPlant(*saved)
	return nil
}

func (r savedPlantRepo) GetByUserIDAndImageURL(_ context.Context, userID uint, imageURL string) (*model.UserSavedPlant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, s := range r.db.savedPlants {
		if s.UserID == userID && s.ImageURL != nil && *s.ImageURL == imageURL {
			out := cloneSavedPlant(s)
			return &out, nil
		}
	}
	return nil, nil
}

func (r savedPlantRepo) GetByUserIDAndIdentificationID(_ context.Context, userID, identificationID uint) (*model.UserSavedPlant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, s := range r.db.savedPlants {
		if s.UserID == userID && s.PlantIdentificationID == identificationID {
			out := cloneSavedPlant(s)
			return &out, nil
		}
	}
	return nil, nil
}

func (r savedPlantRepo) ListByUserID(_ context.Context, userID uint) ([]model.UserSavedPlant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	list := []model.UserSavedPlant{}
	for _, s := range r.db.savedPlants {
		if s.UserID == userID {
			list = append(list, cloneSavedPlant(s))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return newer(list[i].SavedAt, list[i].ID, list[j].SavedAt, list[j].ID)
	})
	return list, nil
}

func (r savedPlantRepo) DeleteByUserIDAndIdentificationID(_ context.Context, userID, identificationID uint) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, s := range r.db.savedPlants {
		if s.UserID == userID && s.PlantIdentificationID == identificationID {
			delete(r.db.savedPlants, id)
			n++
		}
	}
	return n, nil
}

type contactRepo struct{ db *DB }

func (r contactRepo) Create(_ context.Context, msg *model.ContactMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	msg.ID = r.db.nextID("contact_messages")
	msg.CreatedAt = r.db.now()
	r.db.contacts[msg.ID] = *msg
	return nil
}

func newer(at time.Time, id uint, otherAt time.Time, otherID uint) bool {
	if !at.Equal(otherAt) {
		return at.After(otherAt)
	}
	return id > otherID
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneList[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

func cloneIdentification(in model.PlantIdentification) model.PlantIdentification {
	out := in
	out.CareTips = cloneList(in.CareTips)
	return out
}

func cloneDiagnosis(in model.PlantDisease) model.PlantDisease {
	out := in
	out.Symptoms = cloneList(in.Symptoms)
	out.Causes = cloneList(in.Causes)
	out.TreatmentOptions = cloneList(in.TreatmentOptions)
	out.PreventionTips = cloneList(in.PreventionTips)
	out.ImmediateActions = cloneList(in.ImmediateActions)
	out.AffectedParts = cloneList(in.AffectedParts)
	return out
}

func cloneSavedPlant(in model.UserSavedPlant) model.UserSavedPlant {
	out := in
	out.CareTips = cloneList(in.CareTips)
	return out
}
