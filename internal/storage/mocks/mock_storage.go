package mocks

import (
	"context"
	"io"

	"docflow/internal/model"
	"docflow/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, ref model.ObjectRef, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, ref, r, opt)
	if f, ok := args.Get(0).(func(context.Context, model.ObjectRef, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, ref, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, ref model.ObjectRef) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, ref)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}
