package store

// NameID is one row of a resolver index feed: a natural key (name or slug,
// already lowercased by the query) paired with the entity id it resolves to.
type NameID struct {
	Key string
	ID  string
}
