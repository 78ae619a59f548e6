package ipam

import "math/big"

// FirstFree scans seq from the low end and returns the first address the
// used lookup reports as free. The scan exits on the first hit, so on a
// mostly-empty subnet it costs a handful of point queries; ok is false
// when every host in the window is allocated.
func FirstFree(seq *HostSequence) (address string, ok bool, err error) {
	length := seq.Len()
	for i := new(big.Int); i.Cmp(length) < 0; i.Add(i, one) {
		entry, err := seq.At(i)
		if err != nil {
			return "", false, err
		}
		if !entry.Used {
			return entry.Address, true, nil
		}
	}
	return "", false, nil
}
