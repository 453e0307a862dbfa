package aggregates

// WriteTxOwnership says whether an aggregate opens its own write transactions.
type WriteTxOwnership string

const (
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
	WriteTxOwnedByCaller    WriteTxOwnership = "caller_owned"
)

// ReadPolicy says how much of the aggregate is read before a write.
type ReadPolicy string

const (
	// ReadPolicyFullGraph hydrates the account with all payers, premises and rooms first.
	ReadPolicyFullGraph ReadPolicy = "full_graph_reads"
	// ReadPolicyInvariantScoped reads only what the write's invariants need.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
)

// Contract is the policy an aggregate implementation declares.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}
