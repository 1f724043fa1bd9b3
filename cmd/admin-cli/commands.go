package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/filter"
	"github.com/devrev/pairdb/admin-client/internal/health"
	"github.com/devrev/pairdb/admin-client/internal/metadata"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func parsePartitions(csv string) ([]int32, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse partition %q: %w", p, err)
		}
		out = append(out, int32(n))
	}
	return out, nil
}

var getClusterCmd = &cobra.Command{
	Use:   "get-cluster",
	Short: "print the cluster descriptor stored on --node",
	RunE: func(cmd *cobra.Command, args []string) error {
		descriptor, err := client.GetRemoteCluster(cmd.Context(), flags.nodeID, metadata.XMLMapper{})
		if err != nil {
			return err
		}
		for _, n := range descriptor.Nodes() {
			fmt.Printf("node %d: %s admin=%d client=%d partitions=%v\n", n.ID, n.Host, n.AdminPort, n.ClientPort, n.Partitions)
		}
		return nil
	},
}

var getStoresCmd = &cobra.Command{
	Use:   "get-stores",
	Short: "print the store definition list stored on --node",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := client.GetRemoteStoreDefList(cmd.Context(), flags.nodeID, metadata.XMLMapper{})
		if err != nil {
			return err
		}
		for _, d := range defs {
			fmt.Printf("%s replication=%d reads=%d writes=%d\n", d.Name, d.ReplicationFactor, d.RequiredReads, d.RequiredWrites)
		}
		return nil
	},
}

var serverStateSet string

var serverStateCmd = &cobra.Command{
	Use:   "server-state",
	Short: "get or set --node's server state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serverStateSet != "" {
			if err := client.UpdateRemoteServerState(cmd.Context(), flags.nodeID, metadata.ServerState(serverStateSet), metadata.XMLMapper{}); err != nil {
				return err
			}
			logger.Info("updated server state", zap.Int32("node", flags.nodeID), zap.String("state", serverStateSet))
			return nil
		}
		state, err := client.GetRemoteServerState(cmd.Context(), flags.nodeID, metadata.XMLMapper{})
		if err != nil {
			return err
		}
		fmt.Println(state)
		return nil
	},
}

var (
	migrateStealerID  int32
	migrateStore      string
	migratePartitions string
)

var migratePartitionsCmd = &cobra.Command{
	Use:   "migrate-partitions",
	Short: "start an async migration of partitions from --node to --stealer",
	RunE: func(cmd *cobra.Command, args []string) error {
		partitions, err := parsePartitions(migratePartitions)
		if err != nil {
			return err
		}
		requestID, err := client.MigratePartitions(cmd.Context(), flags.nodeID, migrateStealerID, migrateStore, partitions, nil)
		if err != nil {
			return err
		}
		fmt.Printf("request-id: %d\n", requestID)
		return nil
	},
}

var (
	waitRequestID int64
	waitMaxWait   string
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "poll --node for async request --request-id until it completes or --max-wait elapses",
	RunE: func(cmd *cobra.Command, args []string) error {
		maxWait, err := time.ParseDuration(waitMaxWait)
		if err != nil {
			return err
		}
		if err := client.WaitForCompletion(cmd.Context(), flags.nodeID, waitRequestID, maxWait); err != nil {
			return err
		}
		fmt.Println("complete")
		return nil
	},
}

var (
	deleteStore      string
	deletePartitions string
	deleteFilterName string
)

var deletePartitionsCmd = &cobra.Command{
	Use:   "delete-partitions",
	Short: "synchronously delete partition entries from --node",
	RunE: func(cmd *cobra.Command, args []string) error {
		partitions, err := parsePartitions(deletePartitions)
		if err != nil {
			return err
		}
		var spec *filter.Spec
		if deleteFilterName != "" {
			spec = &filter.Spec{ClassName: deleteFilterName}
		}
		count, err := client.DeletePartitions(cmd.Context(), flags.nodeID, deleteStore, partitions, spec)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d entries\n", count)
		return nil
	},
}

var healthDialTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "dial every node in the resolved cluster and report liveness/readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := health.NewChecker(health.Config{
			View:        client.HealthView(),
			DialTimeout: healthDialTimeout,
		}, logger)

		results := checker.RunOnce(cmd.Context())

		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r := results[name]
			fmt.Printf("%-24s %-9s %s\n", r.Name, r.Status, r.Message)
		}

		fmt.Printf("live=%v ready=%v\n", checker.IsLive(), checker.IsReady())
		if !checker.IsReady() {
			return fmt.Errorf("admin-cli: cluster is not ready")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().DurationVar(&healthDialTimeout, "dial-timeout", 2*time.Second, "per-node dial timeout for the reachability probe")

	serverStateCmd.Flags().StringVar(&serverStateSet, "set", "", "new server state to write (NORMAL_SERVER, REBALANCING_MASTER_SERVER, OFFLINE_SERVER); leave empty to read")

	migratePartitionsCmd.Flags().Int32Var(&migrateStealerID, "stealer", 0, "node id receiving the partitions")
	migratePartitionsCmd.Flags().StringVar(&migrateStore, "store", "", "store name")
	migratePartitionsCmd.Flags().StringVar(&migratePartitions, "partitions", "", "comma-separated partition ids")
	migratePartitionsCmd.MarkFlagRequired("stealer")
	migratePartitionsCmd.MarkFlagRequired("store")
	migratePartitionsCmd.MarkFlagRequired("partitions")

	waitCmd.Flags().Int64Var(&waitRequestID, "request-id", 0, "async request id returned by migrate-partitions")
	waitCmd.Flags().StringVar(&waitMaxWait, "max-wait", "5m", "maximum time to poll before giving up")
	waitCmd.MarkFlagRequired("request-id")

	deletePartitionsCmd.Flags().StringVar(&deleteStore, "store", "", "store name")
	deletePartitionsCmd.Flags().StringVar(&deletePartitions, "partitions", "", "comma-separated partition ids")
	deletePartitionsCmd.Flags().StringVar(&deleteFilterName, "filter", "", "registered filter class name to scope the delete")
	deletePartitionsCmd.MarkFlagRequired("store")
	deletePartitionsCmd.MarkFlagRequired("partitions")
}
