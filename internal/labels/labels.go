package labels

// Entity types emitted by the PII model.
const (
	TypePhone      = "PHONE"
	TypeCreditCard = "CREDIT_CARD"
	TypeEmail      = "EMAIL"
	TypePersonName = "PERSON_NAME"
	TypeDate       = "DATE"
	TypeCity       = "CITY"
	TypeLocation   = "LOCATION"
)

// Outside is the tag for characters and tokens that belong to no entity.
const Outside = "O"

// IgnoreID marks tokens excluded from the training loss (structural tokens
// and label padding). The value matches the PyTorch ignore_index convention
// so exported datasets feed the trainer unchanged.
const IgnoreID = -100

// defaultTypes lists entity types in vocabulary order.
var defaultTypes = []string{
	TypePhone,
	TypeCreditCard,
	TypeEmail,
	TypePersonName,
	TypeDate,
	TypeCity,
	TypeLocation,
}

// defaultPII flags which entity types count as personally identifiable.
// Cities and coarse locations are detected but not considered PII.
var defaultPII = map[string]bool{
	TypePhone:      true,
	TypeCreditCard: true,
	TypeEmail:      true,
	TypePersonName: true,
	TypeDate:       true,
	TypeCity:       false,
	TypeLocation:   false,
}

// Vocabulary is the immutable bijection between BIO label strings
// (O, B-<TYPE>, I-<TYPE>) and integer ids, plus the per-type PII table.
// Construct once at startup and share read-only across workers.
type Vocabulary struct {
	labels []string
	ids    map[string]int
	pii    map[string]bool
}

// New builds the default vocabulary: O followed by B/I pairs for each
// entity type in declaration order.
func New() *Vocabulary {
	list := make([]string, 0, 1+2*len(defaultTypes))
	list = append(list, Outside)
	for _, t := range defaultTypes {
		list = append(list, "B-"+t, "I-"+t)
	}
	return FromLabels(list)
}

// FromLabels builds a vocabulary from an explicit ordered label list, as
// loaded from a model's label map. PII flags come from the default table;
// unlisted entity types default to PII.
func FromLabels(list []string) *Vocabulary {
	v := &Vocabulary{
		labels: append([]string(nil), list...),
		ids:    make(map[string]int, len(list)),
		pii:    make(map[string]bool, len(defaultPII)),
	}
	for i, l := range list {
		v.ids[l] = i
	}
	for t, flag := range defaultPII {
		v.pii[t] = flag
	}
	return v
}

// Size returns the number of labels.
func (v *Vocabulary) Size() int {
	return len(v.labels)
}

// Labels returns a copy of the ordered label list.
func (v *Vocabulary) Labels() []string {
	return append([]string(nil), v.labels...)
}

// ID maps a label string to its id. Unknown labels fall back to O's id so a
// bad tag never aborts alignment.
func (v *Vocabulary) ID(label string) int {
	if id, ok := v.ids[label]; ok {
		return id
	}
	return v.OutsideID()
}

// Label maps an id back to its label string. Out-of-range ids decode as O.
func (v *Vocabulary) Label(id int) string {
	if id < 0 || id >= len(v.labels) {
		return Outside
	}
	return v.labels[id]
}

// OutsideID returns the id of the O label.
func (v *Vocabulary) OutsideID() int {
	if id, ok := v.ids[Outside]; ok {
		return id
	}
	return 0
}

// IsPII reports whether an entity type is personally identifiable.
// Unknown types are treated as PII so the redactor errs toward removal.
func (v *Vocabulary) IsPII(entityType string) bool {
	if flag, ok := v.pii[entityType]; ok {
		return flag
	}
	return true
}
