package icp

import (
	"fmt"
	"net/url"

	"github.com/aviate-labs/agent-go"
	"github.com/aviate-labs/agent-go/identity"
	"github.com/aviate-labs/agent-go/principal"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

// CanisterCaller performs Candid encoded canister calls. Query results are
// not persisted by the replica, update calls go through consensus.
type CanisterCaller interface {
	Query(canisterID principal.Principal, methodName string, args []any, values []any) error
	Call(canisterID principal.Principal, methodName string, args []any, values []any) error
}

var _ CanisterCaller = (*agent.Agent)(nil)

func NewAgent(config core.ICPConfig, id identity.Identity) (*agent.Agent, error) {
	host, err := url.Parse(config.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ic host %s: %w", config.Host, err)
	}

	a, err := agent.New(agent.Config{
		Identity:     id,
		ClientConfig: &agent.ClientConfig{Host: host},
		FetchRootKey: config.FetchRootKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ic agent: %w", err)
	}

	return a, nil
}

func parsePrincipal(name, value string) (principal.Principal, error) {
	p, err := principal.Decode(value)
	if err != nil {
		return principal.Principal{}, core.NewError(core.KindValidation, "parse "+name,
			fmt.Errorf("invalid %s %s: %w", name, value, err))
	}

	return p, nil
}
