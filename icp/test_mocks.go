package icp

import (
	"github.com/aviate-labs/agent-go/principal"
	"github.com/stretchr/testify/mock"
)

type CanisterCallerMock struct {
	mock.Mock
}

var _ CanisterCaller = (*CanisterCallerMock)(nil)

func (m *CanisterCallerMock) Query(canisterID principal.Principal, methodName string, args []any, values []any) error {
	return m.Called(canisterID, methodName, args, values).Error(0)
}

func (m *CanisterCallerMock) Call(canisterID principal.Principal, methodName string, args []any, values []any) error {
	return m.Called(canisterID, methodName, args, values).Error(0)
}

// fillResult returns a Run function that stores value into the first result
// pointer of a canister call.
func fillResult[T any](value T) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		values, _ := args.Get(3).([]any)
		if ptr, ok := values[0].(*T); ok {
			*ptr = value
		}
	}
}
