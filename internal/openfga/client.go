// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
)

const readPageSize int32 = 100

type Client struct {
	c *client.OpenFgaClient

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) SetStoreID(ctx context.Context, storeID string) {
	if err := c.c.SetStoreId(storeID); err != nil {
		c.logger.Errorf("failed to set store id: %v", err)
	}
}

func (c *Client) CreateStore(ctx context.Context, name string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CreateStore")
	defer span.End()

	store, err := c.c.CreateStore(ctx).Body(client.ClientCreateStoreRequest{Name: name}).Execute()
	if err != nil {
		c.logger.Errorf("issue when creating store: %s", err)
		return "", err
	}

	return store.GetId(), nil
}

func (c *Client) WriteModel(ctx context.Context, model *client.ClientWriteAuthorizationModelRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteModel")
	defer span.End()

	data, err := c.c.WriteAuthorizationModel(ctx).Body(*model).Execute()
	if err != nil {
		c.logger.Errorf("issue when writing model: %s", err)
		return "", err
	}

	return data.GetAuthorizationModelId(), nil
}

func (c *Client) ReadModel(ctx context.Context) (*fga.AuthorizationModel, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadModel")
	defer span.End()

	authModel, err := c.c.ReadAuthorizationModel(ctx).Execute()
	if err != nil {
		c.availability(0)
		c.logger.Errorf("issue when reading model: %s", err)
		return nil, err
	}
	c.availability(1)

	return authModel.AuthorizationModel, nil
}

// CompareModel reports whether the model loaded in the store matches the given one,
// ids are ignored.
func (c *Client) CompareModel(ctx context.Context, model fga.AuthorizationModel) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CompareModel")
	defer span.End()

	authModel, err := c.ReadModel(ctx)
	if err != nil {
		return false, err
	}

	if authModel == nil || authModel.SchemaVersion != model.SchemaVersion {
		return false, nil
	}

	current, err := normalize(authModel.TypeDefinitions)
	if err != nil {
		return false, err
	}

	expected, err := normalize(model.TypeDefinitions)
	if err != nil {
		return false, err
	}

	return reflect.DeepEqual(current, expected), nil
}

func (c *Client) ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadTuples")
	defer span.End()

	body := client.ClientReadRequest{}
	if user != "" {
		body.User = fga.PtrString(user)
	}
	if relation != "" {
		body.Relation = fga.PtrString(relation)
	}
	if object != "" {
		body.Object = fga.PtrString(object)
	}

	options := client.ClientReadOptions{PageSize: fga.PtrInt32(readPageSize)}
	if continuationToken != "" {
		options.ContinuationToken = fga.PtrString(continuationToken)
	}

	r, err := c.c.Read(ctx).Body(body).Options(options).Execute()
	if err != nil {
		c.logger.Errorf("issue when reading tuples: %s", err)
		return nil, err
	}

	return r, nil
}

func (c *Client) WriteTuples(ctx context.Context, tuples []Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	keys := make([]client.ClientTupleKey, 0, len(tuples))
	for _, t := range tuples {
		keys = append(keys, t.writeKey())
	}

	if _, err := c.c.WriteTuples(ctx).Body(keys).Execute(); err != nil {
		c.logger.Errorf("issue when writing tuples %v: %s", tuples, err)
		return err
	}

	return nil
}

func (c *Client) DeleteTuples(ctx context.Context, tuples []Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.DeleteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	keys := make([]client.ClientTupleKeyWithoutCondition, 0, len(tuples))
	for _, t := range tuples {
		keys = append(keys, t.deleteKey())
	}

	if _, err := c.c.DeleteTuples(ctx).Body(keys).Execute(); err != nil {
		c.logger.Errorf("issue when deleting tuples %v: %s", tuples, err)
		return err
	}

	return nil
}

func (c *Client) availability(v float64) {
	if err := c.monitor.SetDependencyAvailability(map[string]string{"component": "openfga"}, v); err != nil {
		c.logger.Debugf("failed to set dependency availability: %v", err)
	}
}

func normalize(defs []fga.TypeDefinition) (any, error) {
	raw, err := json.Marshal(defs)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func NewClient(cfg *Config) *Client {
	c := new(Client)

	if cfg == nil {
		panic("OpenFGA config missing")
	}

	fgaConfig := &client.ClientConfiguration{
		ApiUrl:               fmt.Sprintf("%s://%s", cfg.ApiScheme, cfg.ApiHost),
		StoreId:              cfg.StoreID,
		AuthorizationModelId: cfg.AuthModelID,
		Credentials: &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{
				ApiToken: cfg.ApiToken,
			},
		},
		Debug: cfg.Debug,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	fgaClient, err := client.NewSdkClient(fgaConfig)
	if err != nil {
		panic(fmt.Sprintf("issues setting up OpenFGA client %s", err))
	}

	c.c = fgaClient

	c.tracer = cfg.Tracer
	c.monitor = cfg.Monitor
	c.logger = cfg.Logger

	return c
}
