package netio

import (
	"sync"

	"github.com/brentp/intintmap"
	"github.com/pokgame/engine/errs"
)

// NetObjKind enumerates the dynamic network object kinds, matching
// pok_netobj_kind in netobj.h.
type NetObjKind uint8

const (
	NetObjUnknown NetObjKind = iota
	NetObjWorld
	NetObjMap
	NetObjMapChunk
	NetObjCharacter
)

// NetObj is the superclass state every dynamic network object carries: a
// protocol-visible id (0 if untracked) and its kind.
type NetObj struct {
	ID   uint32
	Kind NetObjKind
}

// Registry is the process-wide table mapping a netobj id to the live
// object that owns it, matching the global table driven by
// pok_netobj_register/pok_netobj_netread in netobj.c. The hot path (id ->
// live object, looked up once per netread) is backed by intintmap's dense
// int64 map rather than a general-purpose Go map.
type Registry struct {
	mu      sync.Mutex
	idx     *intintmap.Map // id -> slot index into objs
	objs    []any
	nextID  uint32
}

// NewRegistry returns an empty registry. Local id allocation starts at 1;
// 0 is reserved to mean "untracked", matching UNUSED_NETOBJ_ID.
func NewRegistry() *Registry {
	return &Registry{
		idx:    intintmap.New(64, 0.75),
		nextID: 1,
	}
}

// AllocateID returns the next unused local id, matching
// pok_netobj_allocate_unique_id's monotonic counter.
func (r *Registry) AllocateID() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	return id
}

// Register associates id with obj, failing if id is already registered,
// whichever object holds it (duplicate registration is a protocol error).
func (r *Registry) Register(id uint32, obj any) error {
	if id == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.idx.Get(int64(id)); ok {
		return errs.Wrap(errs.KindNetObj, "netio.Registry.Register", errs.ErrNonUniqueID)
	}
	r.objs = append(r.objs, obj)
	r.idx.Put(int64(id), int64(len(r.objs)-1))
	return nil
}

// NetRead is called by a netread implementation once it has decoded the
// object's id: it registers the id, failing the netread with
// ErrNonUniqueID (the same cause Register reports, wrapped under this op)
// if the id collides.
func (r *Registry) NetRead(id uint32, obj any) error {
	if err := r.Register(id, obj); err != nil {
		return errs.Wrap(errs.KindNetObj, "netio.Registry.NetRead", errs.ErrNonUniqueID)
	}
	return nil
}

// Lookup returns the object registered under id, if any.
func (r *Registry) Lookup(id uint32) (any, bool) {
	if id == 0 {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.idx.Get(int64(id))
	if !ok {
		return nil, false
	}
	return r.objs[slot], true
}

// Remove deletes id from the registry, called on object destruction.
func (r *Registry) Remove(id uint32) {
	if id == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot, ok := r.idx.Get(int64(id)); ok {
		r.objs[slot] = nil
	}
	r.idx.Del(int64(id))
}
