package models

import (
	"container/heap"
	"sync"
	"time"
)

type ActionType string

const (
	ActionCustomerCheckout ActionType = "CustomerCheckout"
	ActionCustomerCancel   ActionType = "CustomerCancel"
	ActionAdminAssign      ActionType = "AdminAssign"
	ActionAdminDeleteItem  ActionType = "AdminDeleteItem"
	ActionPartnerStart     ActionType = "PartnerStartDelivery"
	ActionPartnerDeliver   ActionType = "PartnerDeliver"
	ActionPartnerGoOffline ActionType = "PartnerGoOffline"
	ActionPartnerGoOnline  ActionType = "PartnerGoOnline"
)

// Action is a scheduled role action in a simulated session.
type Action struct {
	Time    time.Time
	Type    ActionType
	OrderID string
	ActorID string
	seq     uint64
}

// ActionQueue is a priority queue of actions ordered by time, then by
// insertion order for actions scheduled at the same instant.
type ActionQueue struct {
	actions actionHeap
	next    uint64
	mutex   sync.Mutex
}

type actionHeap []*Action

func (h actionHeap) Len() int { return len(h) }
func (h actionHeap) Less(i, j int) bool {
	if h[i].Time.Equal(h[j].Time) {
		return h[i].seq < h[j].seq
	}
	return h[i].Time.Before(h[j].Time)
}
func (h actionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *actionHeap) Push(x interface{}) {
	*h = append(*h, x.(*Action))
}

func (h *actionHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

func NewActionQueue() *ActionQueue {
	return &ActionQueue{actions: make(actionHeap, 0)}
}

func (q *ActionQueue) Enqueue(action *Action) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	action.seq = q.next
	q.next++
	heap.Push(&q.actions, action)
}

// Dequeue removes and returns the earliest action, or nil when empty.
func (q *ActionQueue) Dequeue() *Action {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.actions) == 0 {
		return nil
	}
	return heap.Pop(&q.actions).(*Action)
}

func (q *ActionQueue) Peek() *Action {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.actions) == 0 {
		return nil
	}
	return q.actions[0]
}

func (q *ActionQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.actions)
}

func (q *ActionQueue) IsEmpty() bool {
	return q.Len() == 0
}
