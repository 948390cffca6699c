// File: utils/constants.go
package utils

import "time"

// SlotCachePrefix prefixes cached per-professional, per-date slot lists.
const SlotCachePrefix = "slots:"

// BookingLockPrefix prefixes the per-professional, per-date booking lock.
const BookingLockPrefix = "lock:booking:"

// DefaultTimeout bounds single database round trips.
const DefaultTimeout = 5 * time.Second
