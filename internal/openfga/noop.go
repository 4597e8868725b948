// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
)

// NoopClient stands in for OpenFGA when the relationship mirror is disabled.
type NoopClient struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *NoopClient) ReadModel(ctx context.Context) (*fga.AuthorizationModel, error) {
	return nil, nil
}

func (c *NoopClient) CompareModel(ctx context.Context, model fga.AuthorizationModel) (bool, error) {
	return true, nil
}

func (c *NoopClient) ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error) {
	return &client.ClientReadResponse{}, nil
}

func (c *NoopClient) WriteTuples(ctx context.Context, tuples []Tuple) error {
	return nil
}

func (c *NoopClient) DeleteTuples(ctx context.Context, tuples []Tuple) error {
	return nil
}

func NewNoopClient(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *NoopClient {
	c := new(NoopClient)

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}
