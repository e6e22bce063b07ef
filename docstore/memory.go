package docstore

import (
	"bytes"
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. Filters support top-level equality only.
// Documents are normalized through BSON on write, so values read back have
// the same types a MongoDB round trip would give.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]bson.M
	counters    map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string][]bson.M),
		counters:    make(map[string]int64),
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Count(ctx context.Context, coll string, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, doc := range m.collections[coll] {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Find(ctx context.Context, coll string, filter bson.M, opts FindOptions) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.filtered(coll, filter)
	if opts.SortField != "" {
		sortDocs(docs, opts.SortField, opts.SortDesc)
	}
	return page(docs, opts.Skip, opts.Limit), nil
}

func (m *Memory) FindOne(ctx context.Context, coll string, filter bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.collections[coll] {
		if matches(doc, filter) {
			return copyDoc(doc), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertOne(ctx context.Context, coll string, doc interface{}) (primitive.ObjectID, error) {
	normalized, err := normalize(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := normalized["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		normalized["_id"] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[coll] = append(m.collections[coll], normalized)
	return id, nil
}

func (m *Memory) UpdateByID(ctx context.Context, coll string, id primitive.ObjectID, set bson.M) (bool, error) {
	normalized, err := normalize(set)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.collections[coll] {
		if doc["_id"] == id {
			for k, v := range normalized {
				doc[k] = v
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteByID(ctx context.Context, coll string, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[coll]
	for i, doc := range docs {
		if doc["_id"] == id {
			m.collections[coll] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) NextSequence(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}

func (m *Memory) FirstByPatient(ctx context.Context, coll string, patientIDs []int64) (map[int64]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[int64]struct{}, len(patientIDs))
	for _, id := range patientIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[int64]bson.M, len(patientIDs))
	for _, doc := range m.collections[coll] {
		pid, ok := toInt64(doc["PatientID"])
		if !ok {
			continue
		}
		if _, want := wanted[pid]; !want {
			continue
		}
		if _, seen := out[pid]; !seen {
			out[pid] = copyDoc(doc)
		}
	}
	return out, nil
}

func (m *Memory) CompleteRecords(ctx context.Context, skip, limit int64) ([]model.DocumentTrainingRecord, int64, error) {
	m.mu.Lock()
	patients := m.filtered(model.TablePatients, nil)
	sortDocs(patients, "updated_at", true)

	type bundle struct {
		patient   bson.M
		condition bson.M
		lifestyle bson.M
		metric    bson.M
		access    bson.M
	}
	var complete []bundle
	for _, p := range patients {
		b := bundle{
			patient:   p,
			condition: m.firstWith(model.TableHealthConditions, p["PatientID"]),
			lifestyle: m.firstWith(model.TableLifestyleFactors, p["PatientID"]),
			metric:    m.firstWith(model.TableHealthMetrics, p["PatientID"]),
			access:    m.firstWith(model.TableHealthcareAccess, p["PatientID"]),
		}
		if b.condition != nil && b.lifestyle != nil && b.metric != nil && b.access != nil {
			complete = append(complete, b)
		}
	}
	m.mu.Unlock()

	total := int64(len(complete))
	start, end := pageBounds(total, skip, limit)
	records := make([]model.DocumentTrainingRecord, 0, end-start)
	for _, b := range complete[start:end] {
		p, err := Decode[model.PatientDocument](b.patient)
		if err != nil {
			return nil, 0, err
		}
		hc, err := Decode[model.HealthConditionDocument](b.condition)
		if err != nil {
			return nil, 0, err
		}
		lf, err := Decode[model.LifestyleFactorDocument](b.lifestyle)
		if err != nil {
			return nil, 0, err
		}
		hm, err := Decode[model.HealthMetricDocument](b.metric)
		if err != nil {
			return nil, 0, err
		}
		ha, err := Decode[model.HealthcareAccessDocument](b.access)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, model.NewDocumentTrainingRecord(p, &hc, &lf, &hm, &ha))
	}
	return records, total, nil
}

// filtered returns copies of the matching documents in insertion order. Callers hold mu.
func (m *Memory) filtered(coll string, filter bson.M) []bson.M {
	out := []bson.M{}
	for _, doc := range m.collections[coll] {
		if matches(doc, filter) {
			out = append(out, copyDoc(doc))
		}
	}
	return out
}

// firstWith returns the oldest document of coll with the given PatientID. Callers hold mu.
func (m *Memory) firstWith(coll string, patientID interface{}) bson.M {
	for _, doc := range m.collections[coll] {
		if valuesEqual(doc["PatientID"], patientID) {
			return doc
		}
	}
	return nil
}

func normalize(doc interface{}) (bson.M, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := bson.M{}
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// sortDocs orders docs by field. Ties keep insertion order ascending and
// reverse it descending, like an _id tie-break in MongoDB.
func sortDocs(docs []bson.M, field string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i][field], docs[j][field])
		if desc {
			return c > 0
		}
		return c < 0
	})
	if !desc {
		return
	}
	// SliceStable kept ties in insertion order; flip each run of equal keys.
	for start := 0; start < len(docs); {
		end := start + 1
		for end < len(docs) && compareValues(docs[start][field], docs[end][field]) == 0 {
			end++
		}
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			docs[i], docs[j] = docs[j], docs[i]
		}
		start = end
	}
}

func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	switch av := a.(type) {
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			return compareInt64(int64(av), int64(bv))
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(av[:], bv[:])
		}
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toInt64(v interface{}) (int64, bool) {
	f, ok := toFloat(v)
	return int64(f), ok
}

func pageBounds(total, skip, limit int64) (int64, int64) {
	start := skip
	if start > total {
		start = total
	}
	end := total
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return start, end
}

func page(docs []bson.M, skip, limit int64) []bson.M {
	start, end := pageBounds(int64(len(docs)), skip, limit)
	return docs[start:end]
}
