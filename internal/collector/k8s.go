package collector

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/evidence"
	"github.com/riskradar/backend-go/internal/store"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// connEnvHints marks environment variable names that usually carry
// connection targets.
var connEnvHints = []string{"URL", "URI", "DSN", "DATABASE", "CONNECTION", "ADDR", "HOST"}

// K8sCollector reads evidence out of a Kubernetes cluster: container
// environment variables as connection strings and pod logs as log entries.
// It also refreshes redundancy attributes from deployment replica counts.
type K8sCollector struct {
	clientset kubernetes.Interface
	namespace string
	labelKey  string
	graph     store.GraphStore
}

// NewK8sCollector creates a K8sCollector with in-cluster or kubeconfig auth.
func NewK8sCollector(kubeconfig, namespace string, graph store.GraphStore) (*K8sCollector, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		cfg, err = rest.InClusterConfig()
		if err != nil {
			// Fallback to default kubeconfig
			cfg, err = clientcmd.BuildConfigFromFlags("", clientcmd.RecommendedHomeFile)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("k8s config: %w", err)
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("k8s clientset: %w", err)
	}

	return NewK8sCollectorWithClient(cs, namespace, graph), nil
}

// NewK8sCollectorWithClient wires an existing clientset; tests use the fake.
func NewK8sCollectorWithClient(cs kubernetes.Interface, namespace string, graph store.GraphStore) *K8sCollector {
	return &K8sCollector{
		clientset: cs,
		namespace: namespace,
		labelKey:  "app",
		graph:     graph,
	}
}

func (c *K8sCollector) pods(ctx context.Context, resourceID string) (*corev1.PodList, error) {
	selector := fmt.Sprintf("%s=%s", c.labelKey, resourceID)
	pods, err := c.clientset.CoreV1().Pods(c.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("%w: list pods for %s: %v", domain.ErrCollectorUnavailable, resourceID, err)
	}
	return pods, nil
}

// Read returns connection-string candidates from the container environment
// of the resource's pods.
func (c *K8sCollector) Read(ctx context.Context, resourceID string) ([]string, error) {
	pods, err := c.pods(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, pod := range pods.Items {
		for _, container := range pod.Spec.Containers {
			for _, env := range container.Env {
				if env.Value == "" || !looksLikeConnEnv(env.Name) || seen[env.Value] {
					continue
				}
				seen[env.Value] = true
				out = append(out, env.Value)
			}
		}
	}
	return out, nil
}

// Query returns pod log lines for the resource within the time range.
func (c *K8sCollector) Query(ctx context.Context, resourceID string, tr evidence.TimeRange) ([]evidence.LogEntry, error) {
	pods, err := c.pods(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	since := metav1.NewTime(tr.Start)
	var entries []evidence.LogEntry
	for _, pod := range pods.Items {
		req := c.clientset.CoreV1().Pods(c.namespace).GetLogs(pod.Name, &corev1.PodLogOptions{
			SinceTime:  &since,
			Timestamps: true,
		})
		stream, err := req.Stream(ctx)
		if err != nil {
			log.Printf("Log stream for %s failed: %v", pod.Name, err)
			continue
		}

		scanner := bufio.NewScanner(stream)
		for scanner.Scan() {
			ts, msg := splitLogLine(scanner.Text(), tr.End)
			if ts.After(tr.End) {
				continue
			}
			entries = append(entries, evidence.LogEntry{Timestamp: ts, Message: msg})
		}
		_ = stream.Close()
	}
	return entries, nil
}

// RefreshAttributes marks resources redundant when their deployment runs
// more than one replica.
func (c *K8sCollector) RefreshAttributes(ctx context.Context) (int, error) {
	deployments, err := c.clientset.AppsV1().Deployments(c.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: list deployments: %v", domain.ErrCollectorUnavailable, err)
	}

	resources, err := c.graph.ListResources(ctx)
	if err != nil {
		return 0, fmt.Errorf("list resources: %w", err)
	}
	byKey := make(map[string]*domain.Resource, len(resources))
	for i := range resources {
		byKey[resources[i].ID] = &resources[i]
		byKey[resources[i].Name] = &resources[i]
	}

	updated := 0
	for _, dep := range deployments.Items {
		r, ok := byKey[dep.Name]
		if !ok {
			continue
		}
		redundant := dep.Spec.Replicas != nil && *dep.Spec.Replicas > 1
		if r.Redundant == redundant {
			continue
		}
		r.Redundant = redundant
		if err := c.graph.UpsertResource(ctx, *r); err != nil {
			return updated, fmt.Errorf("refresh %s: %w", r.ID, err)
		}
		updated++
	}

	log.Printf("K8s attribute refresh updated %d resources", updated)
	return updated, nil
}

func looksLikeConnEnv(name string) bool {
	upper := strings.ToUpper(name)
	for _, hint := range connEnvHints {
		if strings.Contains(upper, hint) {
			return true
		}
	}
	return false
}

// splitLogLine splits a "timestamp message" line produced by the
// Timestamps log option. Lines without a parseable timestamp keep the
// fallback time.
func splitLogLine(line string, fallback time.Time) (time.Time, string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 2 {
		if ts, err := time.Parse(time.RFC3339Nano, parts[0]); err == nil {
			return ts, parts[1]
		}
	}
	return fallback, line
}
