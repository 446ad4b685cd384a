package objects

import "sort"

// Dictionary is a serializable string-keyed collection. Every entry
// lives in the extras bag, so the whole content round-trips without a
// declared signature.
type Dictionary struct {
	Object
}

var dictionaryClass = MustRegister(
	func(a *Args) (*Dictionary, error) {
		return &Dictionary{Object: a.Base()}, nil
	},
	Extras(),
)

// NewDictionary constructs a Dictionary holding items.
func NewDictionary(items map[string]any) *Dictionary {
	return &Dictionary{Object: NewBase(items)}
}

// Set stores value under key.
func (d *Dictionary) Set(key string, value any) {
	d.SetExtra(key, value)
}

// Get returns the value stored under key.
func (d *Dictionary) Get(key string) (any, bool) {
	return d.Extra(key)
}

// Has reports whether key is present.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.Extra(key)
	return ok
}

// Keys returns the stored keys, sorted.
func (d *Dictionary) Keys() []string {
	keys := d.ExtraKeys()
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.ExtraKeys())
}

// Update copies every entry of items into the dictionary.
func (d *Dictionary) Update(items map[string]any) {
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		d.SetExtra(key, items[key])
	}
}
