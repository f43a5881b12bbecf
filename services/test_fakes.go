package services

import (
	"context"
	"strings"
	"sync"

	"github.com/lborres/evently/core"
)

// FakeAccountStore is a test-only fake implementing core.AccountStore.
// It keys accounts by email and exposes error fields for behavior injection.
type FakeAccountStore struct {
	accounts  map[string]core.Account
	mu        sync.RWMutex
	findErr   error
	createErr error
	saveErr   error
	saves     int
}

func NewFakeAccountStore() *FakeAccountStore {
	return &FakeAccountStore{accounts: make(map[string]core.Account)}
}

func (f *FakeAccountStore) FindByEmail(_ context.Context, email string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.accounts[email]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return &a, nil
}

func (f *FakeAccountStore) FindByID(_ context.Context, id string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, a := range f.accounts {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, core.ErrAccountNotFound
}

func (f *FakeAccountStore) Create(_ context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.accounts[a.Email]; exists {
		return core.ErrAccountExists
	}
	f.accounts[a.Email] = *a
	return nil
}

func (f *FakeAccountStore) Save(_ context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, exists := f.accounts[a.Email]; !exists {
		return core.ErrAccountNotFound
	}
	f.accounts[a.Email] = *a
	f.saves++
	return nil
}

// Test helper methods
func (f *FakeAccountStore) Put(a core.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.Email] = a
}

func (f *FakeAccountStore) Get(email string) (core.Account, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	a, ok := f.accounts[email]
	return a, ok
}

func (f *FakeAccountStore) SetFindError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findErr = err
}

func (f *FakeAccountStore) SetCreateError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

func (f *FakeAccountStore) SetSaveError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *FakeAccountStore) Saves() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.saves
}

// SentMessage is a message captured by FakeMailer
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// FakeMailer is a test-only fake implementing core.Mailer. It records every
// message it is asked to send, including ones it fails.
type FakeMailer struct {
	mu      sync.Mutex
	sent    []SentMessage
	sendErr error
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{}
}

func (f *FakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, SentMessage{To: to, Subject: subject, Body: body})
	return f.sendErr
}

func (f *FakeMailer) SetSendError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

func (f *FakeMailer) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.sent...)
}

// LastPasscode returns the passcode from the most recent message, or "".
func (f *FakeMailer) LastPasscode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return strings.TrimPrefix(f.sent[len(f.sent)-1].Body, recoveryBodyPrefix)
}

// FakeRecoveryStore is a test-only fake implementing core.RecoveryStore.
// It ignores expiry and exposes error fields for behavior injection.
type FakeRecoveryStore struct {
	mu         sync.Mutex
	entries    map[string]core.RecoveryEntry
	putErr     error
	getErr     error
	removeErr  error
	attemptErr error
	afterGet   func()
}

func NewFakeRecoveryStore() *FakeRecoveryStore {
	return &FakeRecoveryStore{entries: make(map[string]core.RecoveryEntry)}
}

func (f *FakeRecoveryStore) Put(_ context.Context, email string, entry *core.RecoveryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[email] = *entry
	return nil
}

func (f *FakeRecoveryStore) Get(_ context.Context, email string) (*core.RecoveryEntry, error) {
	f.mu.Lock()
	if f.getErr != nil {
		f.mu.Unlock()
		return nil, f.getErr
	}
	e, ok := f.entries[email]
	hook := f.afterGet
	f.mu.Unlock()

	if !ok {
		return nil, core.ErrEntryNotFound
	}
	if hook != nil {
		hook()
	}
	return &e, nil
}

func (f *FakeRecoveryStore) Remove(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.entries, email)
	return nil
}

func (f *FakeRecoveryStore) RecordFailedAttempt(_ context.Context, email, passcode string, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attemptErr != nil {
		return 0, f.attemptErr
	}
	e, ok := f.entries[email]
	if !ok || e.Passcode != passcode {
		return 0, core.ErrEntryNotFound
	}
	e.Attempts++
	if limit > 0 && e.Attempts >= limit {
		delete(f.entries, email)
		return e.Attempts, nil
	}
	f.entries[email] = e
	return e.Attempts, nil
}

func (f *FakeRecoveryStore) Entry(email string) (core.RecoveryEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[email]
	return e, ok
}

func (f *FakeRecoveryStore) SetPutError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putErr = err
}

func (f *FakeRecoveryStore) SetGetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *FakeRecoveryStore) SetRemoveError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeErr = err
}

func (f *FakeRecoveryStore) SetAttemptError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attemptErr = err
}

// SetAfterGet installs a hook that runs after a successful Get returns its
// copy and before the caller sees it, outside the store lock.
func (f *FakeRecoveryStore) SetAfterGet(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afterGet = hook
}

// fakeFailingHasher is a hasher whose Hash always fails.
type fakeFailingHasher struct {
	err error
}

func (f *fakeFailingHasher) Hash(string) (string, error) {
	return "", f.err
}

func (f *fakeFailingHasher) Verify(string, string) (bool, error) {
	return false, f.err
}
