// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/openfga/go-sdk/client"
	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/canonical/membership-service/internal/authorization"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/openfga"
	"github.com/canonical/membership-service/internal/tracing"
)

const (
	fgaStoreName = "membership-service"

	// keys read back by serve through envconfig
	configMapStoreKey = "OPENFGA_STORE_ID"
	configMapModelKey = "OPENFGA_AUTHORIZATION_MODEL_ID"
)

type fgaModelOutput struct {
	StoreID string `json:"store_id"`
	ModelID string `json:"model_id"`
	Created bool   `json:"store_created"`
}

var createFgaModelCmd = &cobra.Command{
	Use:   "create-fga-model",
	Short: "Creates the organization membership model in openfga",
	Long:  `Creates the organization membership model in openfga, optionally creating the store and publishing both ids to a kubernetes configmap`,
	Args:  cobra.NoArgs,
	RunE:  runCreateFgaModel,
}

func init() {
	rootCmd.AddCommand(createFgaModelCmd)

	createFgaModelCmd.Flags().String("fga-api-url", "", "The openfga API URL")
	createFgaModelCmd.Flags().String("fga-api-token", "", "The openfga API token")
	createFgaModelCmd.Flags().String("fga-store-id", "", "The openfga store to create the model in, if empty one will be created")
	createFgaModelCmd.Flags().String("format", "text", "Output format (text or json)")
	createFgaModelCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	createFgaModelCmd.Flags().String("store-k8s-configmap-resource", "", "The configmap resource to store the FGA Store ID and Model ID, format: namespace/name")
	createFgaModelCmd.Flags().String("kubeconfig", "", "Path to the kubeconfig file (optional, defaults to in-cluster config)")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-url")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-token")
}

func runCreateFgaModel(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("fga-api-url")
	apiToken, _ := cmd.Flags().GetString("fga-api-token")
	storeID, _ := cmd.Flags().GetString("fga-store-id")
	format, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")
	configMapResource, _ := cmd.Flags().GetString("store-k8s-configmap-resource")
	kubeconfigPath, _ := cmd.Flags().GetString("kubeconfig")

	var logger logging.LoggerInterface = logging.NewNoopLogger()
	if verbose {
		logger = logging.NewLogger("debug")
	}

	out, err := createModel(cmd.Context(), apiURL, apiToken, storeID, verbose, logger)
	if err != nil {
		return err
	}

	if configMapResource != "" {
		if err := publishConfigMap(cmd.Context(), kubeconfigPath, configMapResource, out); err != nil {
			return fmt.Errorf("failed to update configmap: %w", err)
		}
		logger.Infof("configmap %s updated", configMapResource)
	}

	if format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created model: %s\n", out.ModelID)
	if out.Created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created store: %s\n", out.StoreID)
	}
	return nil
}

func createModel(ctx context.Context, apiURL, apiToken, storeID string, verbose bool, logger logging.LoggerInterface) (*fgaModelOutput, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	fgaClient := openfga.NewClient(
		openfga.NewConfig(
			u.Scheme,
			u.Host,
			storeID,
			apiToken,
			"",
			verbose,
			tracing.NewNoopTracer(),
			monitoring.NewNoopMonitor(fgaStoreName, logger),
			logger,
		),
	)

	out := &fgaModelOutput{StoreID: storeID}

	if storeID == "" {
		out.StoreID, err = fgaClient.CreateStore(ctx, fgaStoreName)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
		out.Created = true

		fgaClient.SetStoreID(ctx, out.StoreID)
	}

	model := authorization.NewAuthorizationModelProvider("v0").GetModel()

	out.ModelID, err = fgaClient.WriteModel(
		ctx,
		&client.ClientWriteAuthorizationModelRequest{
			TypeDefinitions: model.TypeDefinitions,
			SchemaVersion:   model.SchemaVersion,
			Conditions:      model.Conditions,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write model: %w", err)
	}

	return out, nil
}

func kubeConfig(kubeconfigPath string) (*rest.Config, error) {
	if kubeconfigPath != "" {
		return clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	}

	if config, err := rest.InClusterConfig(); err == nil {
		return config, nil
	}

	// outside a cluster without --kubeconfig, use the default loading rules
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{},
	).ClientConfig()
}

func publishConfigMap(ctx context.Context, kubeconfigPath, resource string, out *fgaModelOutput) error {
	namespace, name, found := strings.Cut(resource, "/")
	if !found || namespace == "" || name == "" {
		return fmt.Errorf("invalid configmap resource format: %s, expected namespace/name", resource)
	}

	config, err := kubeConfig(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	configMaps := clientset.CoreV1().ConfigMaps(namespace)

	cm, err := configMaps.Get(ctx, name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
			Data: map[string]string{
				configMapStoreKey: out.StoreID,
				configMapModelKey: out.ModelID,
			},
		}
		if _, err := configMaps.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create configmap %s: %w", resource, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get configmap %s: %w", resource, err)
	}

	if cm.Data == nil {
		cm.Data = make(map[string]string)
	}
	cm.Data[configMapStoreKey] = out.StoreID
	cm.Data[configMapModelKey] = out.ModelID

	if _, err := configMaps.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update configmap %s: %w", resource, err)
	}

	return nil
}
