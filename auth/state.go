package auth

import (
	"sync"
	"time"
)

// LoginState is one pending handshake: the state token was handed to the
// browser and the same redirect URI must be presented at the token exchange.
type LoginState struct {
	RedirectURI string
	Created     time.Time
}

var (
	loginStates     = map[string]LoginState{}
	loginStatesLock sync.Mutex
)

const stateTTL = 10 * time.Minute

// RecordLoginState registers a pending login under its anti-replay token.
func RecordLoginState(state string, redirectURI string) {
	loginStatesLock.Lock()
	defer loginStatesLock.Unlock()

	for s, pending := range loginStates {
		if time.Since(pending.Created) > stateTTL {
			delete(loginStates, s)
		}
	}
	loginStates[state] = LoginState{RedirectURI: redirectURI, Created: time.Now()}
}

// ConsumeLoginState removes and returns the pending login for a state token.
// Each token is usable exactly once.
func ConsumeLoginState(state string) (LoginState, bool) {
	loginStatesLock.Lock()
	defer loginStatesLock.Unlock()

	pending, ok := loginStates[state]
	if ok {
		delete(loginStates, state)
	}
	if ok && time.Since(pending.Created) > stateTTL {
		return LoginState{}, false
	}
	return pending, ok
}
