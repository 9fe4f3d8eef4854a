package models

import (
	"fmt"
	"sort"
	"strings"
)

// VenueClass tells whether a venue trades a tokenized claim or the physical item.
type VenueClass string

const (
	OnChain  VenueClass = "on_chain"
	OffChain VenueClass = "off_chain"
)

// VenueClasses partitions venue names into on-chain and off-chain sets.
type VenueClasses map[string]VenueClass

// NewVenueClasses builds the partition. A name listed twice, in either set, is rejected.
func NewVenueClasses(onChain, offChain []string) (VenueClasses, error) {
	vc := make(VenueClasses, len(onChain)+len(offChain))
	add := func(name string, class VenueClass) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("venue name cannot be empty")
		}
		if prev, ok := vc[name]; ok {
			return fmt.Errorf("venue %q listed twice (%s, %s)", name, prev, class)
		}
		vc[name] = class
		return nil
	}
	for _, n := range onChain {
		if err := add(n, OnChain); err != nil {
			return nil, err
		}
	}
	for _, n := range offChain {
		if err := add(n, OffChain); err != nil {
			return nil, err
		}
	}
	if len(vc) == 0 {
		return nil, fmt.Errorf("venue partition is empty")
	}
	return vc, nil
}

// ClassOf returns the class of a venue and whether it is known.
func (vc VenueClasses) ClassOf(venue string) (VenueClass, bool) {
	c, ok := vc[venue]
	return c, ok
}

// Venues returns the sorted venue names of one class.
func (vc VenueClasses) Venues(class VenueClass) []string {
	out := make([]string, 0, len(vc))
	for name, c := range vc {
		if c == class {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
