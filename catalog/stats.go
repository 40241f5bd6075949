package catalog

import "go.etcd.io/bbolt"

// Stats is a summary of Bolt bucket statistics. Size counts bytes in use,
// including small buckets stored inline in their parent page; Alloc counts
// whole pages.
type Stats struct {
	Snapshots int

	DataSize  int
	DataAlloc int
	MetaSize  int
	MetaAlloc int
}

func (s *Stats) TotalSize() int {
	return s.DataSize + s.MetaSize
}

func (s *Stats) TotalAlloc() int {
	return s.DataAlloc + s.MetaAlloc
}

// Stats reports how much of the Bolt file the snapshots occupy.
func (c *Catalog) Stats() (Stats, error) {
	var result Stats
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		if b := btx.Bucket(dataBucket); b != nil {
			bs := b.Stats()
			result.Snapshots = bs.KeyN
			result.DataSize = bs.LeafInuse + bs.InlineBucketInuse
			result.DataAlloc = bs.BranchAlloc + bs.LeafAlloc
		}
		if b := btx.Bucket(metaBucket); b != nil {
			bs := b.Stats()
			result.MetaSize = bs.LeafInuse + bs.InlineBucketInuse
			result.MetaAlloc = bs.BranchAlloc + bs.LeafAlloc
		}
		return nil
	})
	return result, err
}
