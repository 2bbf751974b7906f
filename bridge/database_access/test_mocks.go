package databaseaccess

import (
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/stretchr/testify/mock"
)

type DBMock struct {
	mock.Mock
}

var _ core.RecoveryStore = (*DBMock)(nil)

func (m *DBMock) Get(key string) (*core.RecoveryRecord, error) {
	args := m.Called(key)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*core.RecoveryRecord), args.Error(1) //nolint:forcetypeassert
}

func (m *DBMock) Set(key string, record *core.RecoveryRecord) error {
	return m.Called(key, record).Error(0)
}

func (m *DBMock) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *DBMock) List() ([]*core.RecoveryRecord, error) {
	args := m.Called()

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*core.RecoveryRecord), args.Error(1) //nolint:forcetypeassert
}

func (m *DBMock) Close() error {
	return m.Called().Error(0)
}
