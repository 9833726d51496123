package collector

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/store"
)

// ec2API and rdsAPI cover the calls AWSCollector issues, so tests can
// substitute fakes.
type ec2API interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, opts ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

type rdsAPI interface {
	DescribeDBClusters(ctx context.Context, in *rds.DescribeDBClustersInput, opts ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error)
}

// AWSCollector refreshes redundancy and zone attributes on graph resources
// from the live AWS control plane. It never creates or deletes resources;
// discovery owns the graph shape.
type AWSCollector struct {
	ec2Client ec2API
	rdsClient rdsAPI
	graph     store.GraphStore
}

// NewAWSCollector creates an AWSCollector for the given region.
func NewAWSCollector(ctx context.Context, region string, graph store.GraphStore) (*AWSCollector, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return &AWSCollector{
		ec2Client: ec2.NewFromConfig(cfg),
		rdsClient: rds.NewFromConfig(cfg),
		graph:     graph,
	}, nil
}

// RefreshAttributes updates redundancy flags and zone lists for database
// and VM resources from RDS and EC2. A failed service call is logged and
// skipped so one unavailable API never blocks the other.
func (c *AWSCollector) RefreshAttributes(ctx context.Context) (int, error) {
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

	clusters, err := c.rdsClient.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{})
	if err != nil {
		log.Printf("RDS describe failed (non-fatal): %v", err)
	} else {
		for _, cluster := range clusters.DBClusters {
			r, ok := byKey[aws.ToString(cluster.DBClusterIdentifier)]
			if !ok || r.Type != domain.ResourceDatabase {
				continue
			}
			r.Redundant = aws.ToBool(cluster.MultiAZ)
			r.Zones = append([]string(nil), cluster.AvailabilityZones...)
			sort.Strings(r.Zones)
			if err := c.graph.UpsertResource(ctx, *r); err != nil {
				return updated, fmt.Errorf("refresh %s: %w", r.ID, err)
			}
			updated++
		}
	}

	reservations, err := c.ec2Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		log.Printf("EC2 describe failed (non-fatal): %v", err)
		return updated, nil
	}
	for _, res := range reservations.Reservations {
		for _, inst := range res.Instances {
			r, ok := byKey[aws.ToString(inst.InstanceId)]
			if !ok {
				// instances often map by Name tag instead
				for _, t := range inst.Tags {
					if aws.ToString(t.Key) == "Name" {
						r, ok = byKey[aws.ToString(t.Value)]
					}
				}
			}
			if !ok || r.Type != domain.ResourceVM {
				continue
			}
			if inst.Placement != nil && inst.Placement.AvailabilityZone != nil {
				r.Zones = []string{aws.ToString(inst.Placement.AvailabilityZone)}
			}
			if err := c.graph.UpsertResource(ctx, *r); err != nil {
				return updated, fmt.Errorf("refresh %s: %w", r.ID, err)
			}
			updated++
		}
	}

	log.Printf("AWS attribute refresh updated %d resources", updated)
	return updated, nil
}
