package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/repository"
)

// 内存版仓储，替代 Mongo/Postgres 驱动参与 service 层测试。

type fakeCarRepo struct {
	mu      sync.Mutex
	cars    map[string]*model.CarAd
	incrErr error
}

func newFakeCarRepo() *fakeCarRepo {
	return &fakeCarRepo{cars: map[string]*model.CarAd{}}
}

func cloneCar(car *model.CarAd) *model.CarAd {
	cp := *car
	if car.Specifications != nil {
		cp.Specifications = make(map[string]string, len(car.Specifications))
		for k, v := range car.Specifications {
			cp.Specifications[k] = v
		}
	}
	cp.Features = append([]string(nil), car.Features...)
	cp.Images = append([]string(nil), car.Images...)
	return &cp
}

func (r *fakeCarRepo) Create(ctx context.Context, car *model.CarAd) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if car.ID.IsZero() {
		car.ID = primitive.NewObjectID()
	}
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now
	r.cars[car.ID.Hex()] = cloneCar(car)
	return car.ID.Hex(), nil
}

func (r *fakeCarRepo) FindByID(ctx context.Context, id string) (*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCar(car), nil
}

func (r *fakeCarRepo) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrErr != nil {
		return r.incrErr
	}
	car, ok := r.cars[id]
	if !ok {
		return repository.ErrNotFound
	}
	car.Views++
	return nil
}

func (r *fakeCarRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		if rest, found := strings.CutPrefix(k, "specifications."); found {
			if car.Specifications == nil {
				car.Specifications = map[string]string{}
			}
			car.Specifications[rest] = v.(string)
			continue
		}
		switch k {
		case "title":
			car.Title = v.(string)
		case "make":
			car.Make = v.(string)
		case "model":
			car.Model = v.(string)
		case "year":
			car.Year = v.(int)
		case "price":
			car.Price = v.(int)
		case "mileage":
			car.Mileage = v.(int)
		case "description":
			car.Description = v.(string)
		case "body_type":
			car.BodyType = v.(string)
		case "fuel_type":
			car.FuelType = v.(string)
		case "transmission":
			car.Transmission = v.(string)
		case "location":
			car.Location = v.(string)
		case "features":
			car.Features = v.([]string)
		case "status":
			car.Status = v.(string)
		}
	}
	car.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCarRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

func (r *fakeCarRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cars[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.cars, id)
	return nil
}

func (r *fakeCarRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cars[id]
	return ok, nil
}

func (r *fakeCarRepo) FindByOwner(ctx context.Context, ownerID string) ([]*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarAd
	for _, car := range r.cars {
		if car.UserID.Hex() == ownerID {
			out = append(out, cloneCar(car))
		}
	}
	return out, nil
}

func (r *fakeCarRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarAd
	for _, id := range ids {
		if car, ok := r.cars[id]; ok {
			out = append(out, cloneCar(car))
		}
	}
	return out, nil
}

func (r *fakeCarRepo) FindByMakeModel(ctx context.Context, carMake, carModel string) ([]*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarAd
	for _, car := range r.cars {
		if strings.EqualFold(car.Make, carMake) && strings.EqualFold(car.Model, carModel) {
			out = append(out, cloneCar(car))
		}
	}
	return out, nil
}

func (r *fakeCarRepo) Search(ctx context.Context, q repository.CarQuery) ([]*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarAd
	for _, car := range r.cars {
		if car.Status != model.CarStatusActive {
			continue
		}
		if q.Query != "" && !matchesQuery(car, q.Query) {
			continue
		}
		if q.Make != "" && q.Make != "all" && car.Make != q.Make {
			continue
		}
		if q.Category != "" && car.BodyType != q.Category {
			continue
		}
		if q.MinPrice > 0 && car.Price < q.MinPrice {
			continue
		}
		if q.MaxPrice > 0 && car.Price > q.MaxPrice {
			continue
		}
		if q.MinYear > 0 && car.Year < q.MinYear {
			continue
		}
		if q.MaxYear > 0 && car.Year > q.MaxYear {
			continue
		}
		if len(q.Makes) > 0 && !contains(q.Makes, car.Make) {
			continue
		}
		if len(q.BodyTypes) > 0 && !contains(q.BodyTypes, car.BodyType) {
			continue
		}
		if len(q.FuelTypes) > 0 && !contains(q.FuelTypes, car.FuelType) {
			continue
		}
		out = append(out, cloneCar(car))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesQuery(car *model.CarAd, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{car.Title, car.Description, car.Make, car.Model} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func (r *fakeCarRepo) Similar(ctx context.Context, car *model.CarAd, limit int) ([]*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarAd
	for _, other := range r.cars {
		if other.ID == car.ID || other.Status != model.CarStatusActive {
			continue
		}
		priceMatch := other.Price >= int(float64(car.Price)*0.8) && other.Price <= int(float64(car.Price)*1.2)
		if other.Make == car.Make || priceMatch || other.BodyType == car.BodyType {
			out = append(out, cloneCar(other))
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCarRepo) Featured(ctx context.Context, limit int) ([]*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarAd
	for _, car := range r.cars {
		if car.Status == model.CarStatusActive {
			out = append(out, cloneCar(car))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCarRepo) All(ctx context.Context) ([]*model.CarAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarAd
	for _, car := range r.cars {
		out = append(out, cloneCar(car))
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return "", repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	r.users[user.ID.Hex()] = &cp
	return user.ID.Hex(), nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id, fullName, phoneNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.FullName = fullName
	user.PhoneNumber = phoneNumber
	user.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeFavoriteRepo struct {
	mu   sync.Mutex
	rows map[string]time.Time // userID + "/" + carID
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{rows: map[string]time.Time{}}
}

func favKey(userID, carID string) string { return userID + "/" + carID }

func (r *fakeFavoriteRepo) Create(ctx context.Context, userID, carID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := favKey(userID, carID)
	if _, ok := r.rows[key]; ok {
		return repository.ErrDuplicate
	}
	r.rows[key] = time.Now()
	return nil
}

func (r *fakeFavoriteRepo) Delete(ctx context.Context, userID, carID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := favKey(userID, carID)
	if _, ok := r.rows[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, key)
	return nil
}

func (r *fakeFavoriteRepo) Exists(ctx context.Context, userID, carID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[favKey(userID, carID)]
	return ok, nil
}

func (r *fakeFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]*model.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var favs []*model.Favorite
	for key, created := range r.rows {
		parts := strings.SplitN(key, "/", 2)
		if parts[0] != userID {
			continue
		}
		uid, err := primitive.ObjectIDFromHex(parts[0])
		if err != nil {
			continue
		}
		cid, err := primitive.ObjectIDFromHex(parts[1])
		if err != nil {
			continue
		}
		favs = append(favs, &model.Favorite{UserID: uid, CarAdID: cid, CreatedAt: created})
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].CreatedAt.After(favs[j].CreatedAt) })
	return favs, nil
}

func (r *fakeFavoriteRepo) DeleteByCar(ctx context.Context, carID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key := range r.rows {
		if strings.HasSuffix(key, "/"+carID) {
			delete(r.rows, key)
			n++
		}
	}
	return n, nil
}

type fakeSpecRepo struct {
	mu    sync.Mutex
	specs map[string]*model.CarSpec
}

func newFakeSpecRepo() *fakeSpecRepo {
	return &fakeSpecRepo{specs: map[string]*model.CarSpec{}}
}

func (r *fakeSpecRepo) Upsert(ctx context.Context, spec *model.CarSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *spec
	cp.UpdatedAt = time.Now()
	r.specs[spec.CarID] = &cp
	return nil
}

func (r *fakeSpecRepo) DeleteByCarID(ctx context.Context, carID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specs, carID)
	return nil
}

func (r *fakeSpecRepo) FindByCarID(ctx context.Context, carID string) (*model.CarSpec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spec, ok := r.specs[carID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *spec
	return &cp, nil
}

func (r *fakeSpecRepo) FindByCarIDs(ctx context.Context, carIDs []string) ([]*model.CarSpec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CarSpec
	for _, id := range carIDs {
		if spec, ok := r.specs[id]; ok {
			cp := *spec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSpecRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.specs)), nil
}

func (r *fakeSpecRepo) has(carID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.specs[carID]
	return ok
}

type fakePriceHistoryRepo struct {
	mu   sync.Mutex
	rows []*model.PriceHistory
}

func newFakePriceHistoryRepo() *fakePriceHistoryRepo { return &fakePriceHistoryRepo{} }

func (r *fakePriceHistoryRepo) Insert(ctx context.Context, rows []*model.PriceHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *fakePriceHistoryRepo) FindSeries(ctx context.Context, carMake, carModel string) ([]*model.PriceHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PriceHistory
	for _, row := range r.rows {
		if row.Make == carMake && row.Model == carModel {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakePriceHistoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeEventLog struct {
	mu          sync.Mutex
	searches    []*model.SearchLog
	views       []*model.CarView
	comparisons []*model.CarComparison
	features    map[string]int
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{features: map[string]int{}}
}

func (r *fakeEventLog) LogSearch(ctx context.Context, entry *model.SearchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, entry)
	return nil
}

func (r *fakeEventLog) LogView(ctx context.Context, entry *model.CarView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, entry)
	return nil
}

func (r *fakeEventLog) LogComparison(ctx context.Context, entry *model.CarComparison) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comparisons = append(r.comparisons, entry)
	return nil
}

func (r *fakeEventLog) BumpFeature(ctx context.Context, feature string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[feature]++
	return nil
}

func (r *fakeEventLog) PopularQueries(ctx context.Context, limit int) ([]repository.QueryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, s := range r.searches {
		counts[s.Query]++
	}
	var rows []repository.QueryCount
	for q, c := range counts {
		rows = append(rows, repository.QueryCount{Query: q, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeEventLog) PopularFeatures(ctx context.Context, limit int) ([]*model.FeaturePopularity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []*model.FeaturePopularity
	for f, c := range r.features {
		rows = append(rows, &model.FeaturePopularity{Feature: f, SearchCount: c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SearchCount > rows[j].SearchCount })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeEventLog) ViewTrends(ctx context.Context, days int) ([]repository.ViewTrend, error) {
	return nil, nil
}

func (r *fakeEventLog) MostViewed(ctx context.Context, limit int) ([]repository.CarViewCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, v := range r.views {
		counts[v.CarID]++
	}
	var rows []repository.CarViewCount
	for id, c := range counts {
		rows = append(rows, repository.CarViewCount{CarID: id, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeEventLog) viewCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
