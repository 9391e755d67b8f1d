package formhttp

import (
	"testing"
	"time"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/schema"
)

func TestStoreLifecycle(t *testing.T) {
	sess := form.MustNew(schema.MustNew(schema.Schema{Fields: []schema.FieldConfig{
		{Name: "q", Type: schema.FieldTypeText},
	}}))

	store := NewStore(time.Minute)
	var evicted []string
	store.OnEvicted(func(id string) { evicted = append(evicted, id) })

	store.Put(sess)
	got, ok := store.Get(sess.ID())
	if !ok || got != sess {
		t.Fatalf("expected stored session")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}

	store.Delete(sess.ID())
	if _, ok := store.Get(sess.ID()); ok {
		t.Fatalf("expected session to be gone")
	}
	if len(evicted) != 1 || evicted[0] != sess.ID() {
		t.Fatalf("expected eviction callback, got %v", evicted)
	}
}

func TestStoreExpires(t *testing.T) {
	sess := form.MustNew(schema.MustNew(schema.Schema{Fields: []schema.FieldConfig{
		{Name: "q", Type: schema.FieldTypeText},
	}}))

	store := NewStore(20 * time.Millisecond)
	store.Put(sess)
	time.Sleep(40 * time.Millisecond)
	if _, ok := store.Get(sess.ID()); ok {
		t.Fatalf("expected session to expire")
	}
}

func TestStoreDefaultTTL(t *testing.T) {
	if store := NewStore(0); store.ttl != DefaultSessionTTL {
		t.Fatalf("expected default ttl, got %v", store.ttl)
	}
}
