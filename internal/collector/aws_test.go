package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEC2 struct {
	out *ec2.DescribeInstancesOutput
	err error
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, opts ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return f.out, f.err
}

type fakeRDS struct {
	out *rds.DescribeDBClustersOutput
	err error
}

func (f *fakeRDS) DescribeDBClusters(ctx context.Context, in *rds.DescribeDBClustersInput, opts ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error) {
	return f.out, f.err
}

func awsGraph(t *testing.T) *store.MemoryStore {
	t.Helper()
	g := store.NewMemoryStore()
	ctx := context.Background()
	for _, r := range []domain.Resource{
		{ID: "orders-db-cluster", Name: "orders-db", Type: domain.ResourceDatabase},
		{ID: "i-0abc", Name: "batch-worker", Type: domain.ResourceVM},
	} {
		require.NoError(t, g.UpsertResource(ctx, r))
	}
	return g
}

func TestAWSRefreshAttributes(t *testing.T) {
	g := awsGraph(t)
	c := &AWSCollector{
		rdsClient: &fakeRDS{out: &rds.DescribeDBClustersOutput{
			DBClusters: []rdstypes.DBCluster{{
				DBClusterIdentifier: aws.String("orders-db-cluster"),
				MultiAZ:             aws.Bool(true),
				AvailabilityZones:   []string{"us-east-1b", "us-east-1a"},
			}},
		}},
		ec2Client: &fakeEC2{out: &ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{
				Instances: []ec2types.Instance{{
					InstanceId: aws.String("i-0abc"),
					Placement:  &ec2types.Placement{AvailabilityZone: aws.String("us-east-1c")},
				}},
			}},
		}},
		graph: g,
	}

	ctx := context.Background()
	updated, err := c.RefreshAttributes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	db, err := g.GetResource(ctx, "orders-db-cluster")
	require.NoError(t, err)
	assert.True(t, db.Redundant)
	assert.Equal(t, []string{"us-east-1a", "us-east-1b"}, db.Zones)

	vm, err := g.GetResource(ctx, "i-0abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1c"}, vm.Zones)
}

func TestAWSRefreshPartialFailure(t *testing.T) {
	g := awsGraph(t)
	c := &AWSCollector{
		rdsClient: &fakeRDS{err: errors.New("rds throttled")},
		ec2Client: &fakeEC2{out: &ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{
				Instances: []ec2types.Instance{{
					InstanceId: aws.String("i-0abc"),
					Placement:  &ec2types.Placement{AvailabilityZone: aws.String("us-east-1c")},
				}},
			}},
		}},
		graph: g,
	}

	// a failed RDS call is logged, EC2 still refreshes
	updated, err := c.RefreshAttributes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
}

func TestAWSRefreshMatchesByNameTag(t *testing.T) {
	g := awsGraph(t)
	c := &AWSCollector{
		rdsClient: &fakeRDS{out: &rds.DescribeDBClustersOutput{}},
		ec2Client: &fakeEC2{out: &ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{
				Instances: []ec2types.Instance{{
					InstanceId: aws.String("i-unknown"),
					Tags:       []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("batch-worker")}},
					Placement:  &ec2types.Placement{AvailabilityZone: aws.String("us-east-1d")},
				}},
			}},
		}},
		graph: g,
	}

	ctx := context.Background()
	updated, err := c.RefreshAttributes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	vm, err := g.GetResource(ctx, "i-0abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1d"}, vm.Zones)
}
