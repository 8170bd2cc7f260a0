// Package gating implements the Inline Sensitivity Checkpoint (ISC) Gating
// Policy (C7): a table of expr-lang rules, evaluated per campaign/subreddit
// pair against the current CommunityProfile and GeneratedDraft to decide
// whether a draft may proceed to posting.
package gating

import (
	"container/list"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// conditionCache is a thread-safe LRU cache of compiled expr programs, keyed
// by the raw rule expression text, so re-evaluating the same rule across many
// drafts doesn't recompile it each time.
type conditionCache struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
	mu       sync.RWMutex
}

type cacheEntry struct {
	key     string
	program *vm.Program
}

func newConditionCache(capacity int) *conditionCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &conditionCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

func (cc *conditionCache) get(condition string) (*vm.Program, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if element, found := cc.cache[condition]; found {
		cc.lruList.MoveToFront(element)
		return element.Value.(*cacheEntry).program, true
	}
	return nil, false
}

func (cc *conditionCache) put(condition string, program *vm.Program) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if element, found := cc.cache[condition]; found {
		cc.lruList.MoveToFront(element)
		element.Value.(*cacheEntry).program = program
		return
	}

	entry := &cacheEntry{key: condition, program: program}
	element := cc.lruList.PushFront(entry)
	cc.cache[condition] = element

	if cc.lruList.Len() > cc.capacity {
		cc.evictOldest()
	}
}

func (cc *conditionCache) evictOldest() {
	oldest := cc.lruList.Back()
	if oldest == nil {
		return
	}
	cc.lruList.Remove(oldest)
	delete(cc.cache, oldest.Value.(*cacheEntry).key)
}

func (cc *conditionCache) len() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.lruList.Len()
}

// compileAndCache compiles condition against env, reusing a cached program
// when the same rule text was seen before.
func (cc *conditionCache) compileAndCache(condition string, env any) (*vm.Program, error) {
	if program, found := cc.get(condition); found {
		return program, nil
	}
	program, err := expr.Compile(condition, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, err
	}
	cc.put(condition, program)
	return program, nil
}
