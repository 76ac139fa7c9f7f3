package network

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/moonlitpsych/bookability/internal/domain/provider"
)

// FilterEffective applies the reference-date semantics to a raw relationship
// list. It returns the relationships usable on the reference date plus the
// anomalies the pass uncovered:
//
//   - rows with no effective date are excluded and flagged, never dropped
//     silently;
//   - when more than one row for the same (provider, payer, status) passes,
//     all of them are returned and the duplication is flagged. Collapsing
//     duplicates here would be a policy decision the data does not license.
func FilterEffective(rels []*Relationship, ref Evaluation) ([]*Relationship, []Anomaly) {
	var passing []*Relationship
	var anomalies []Anomaly

	for _, r := range rels {
		if r.EffectiveDate == nil {
			anomalies = append(anomalies, Anomaly{
				Kind:           AnomalyMissingEffectiveDate,
				RelationshipID: r.ID,
				ProviderID:     r.ProviderID,
				PayerID:        r.PayerID,
				Detail:         "relationship has no effective date and can never be bookable",
			})
			continue
		}
		if r.EffectiveOn(ref.Date) {
			passing = append(passing, r)
		}
	}

	type dupKey struct {
		provider uuid.UUID
		payer    uuid.UUID
		status   NetworkStatus
	}
	seen := make(map[dupKey][]*Relationship)
	for _, r := range passing {
		k := dupKey{r.ProviderID, r.PayerID, r.NetworkStatus}
		seen[k] = append(seen[k], r)
	}
	for k, group := range seen {
		if len(group) < 2 {
			continue
		}
		anomalies = append(anomalies, Anomaly{
			Kind:           AnomalyDuplicateActive,
			RelationshipID: group[0].ID,
			ProviderID:     k.provider,
			PayerID:        k.payer,
			Detail: fmt.Sprintf("%d %s relationships simultaneously effective for the same provider and payer",
				len(group), k.status),
		})
	}

	return passing, anomalies
}

// Resolve runs the full pipeline over one snapshot: temporal filter, then
// normalization of every surviving relationship against the snapshot's
// provider and payer attributes. The result is deterministic for a given
// snapshot and evaluation; anomalies never abort the resolution of unrelated,
// valid relationships.
func Resolve(snap *Snapshot, eval Evaluation) *Resolution {
	passing, anomalies := FilterEffective(snap.Relationships, eval)

	var records []BookableRecord
	for _, rel := range passing {
		rec, recAnomalies, ok := normalize(rel, snap)
		anomalies = append(anomalies, recAnomalies...)
		if ok {
			records = append(records, rec)
		}
	}

	sortRecords(records)
	sortAnomalies(anomalies)

	return &Resolution{
		ReferenceDate: dateOnly(eval.Date),
		Mode:          eval.Mode,
		Records:       records,
		Anomalies:     anomalies,
	}
}

// normalize shapes one filtered relationship into the canonical bookable
// record. Orphaned provider or payer references exclude the record but are
// surfaced. A supervised relationship whose attending cannot be resolved is
// emitted with the unsupervised-orphan marker; misclassifying it as direct
// would let a resident appear independently contracted.
func normalize(rel *Relationship, snap *Snapshot) (BookableRecord, []Anomaly, bool) {
	var anomalies []Anomaly

	prov, ok := snap.Providers[rel.ProviderID]
	if !ok {
		anomalies = append(anomalies, Anomaly{
			Kind:           AnomalyOrphanedProvider,
			RelationshipID: rel.ID,
			ProviderID:     rel.ProviderID,
			PayerID:        rel.PayerID,
			Detail:         "relationship references a provider that does not exist",
		})
		return BookableRecord{}, anomalies, false
	}

	pay, ok := snap.Payers[rel.PayerID]
	if !ok {
		anomalies = append(anomalies, Anomaly{
			Kind:           AnomalyOrphanedPayer,
			RelationshipID: rel.ID,
			ProviderID:     rel.ProviderID,
			PayerID:        rel.PayerID,
			Detail:         "relationship references a payer that does not exist",
		})
		return BookableRecord{}, anomalies, false
	}

	rec := BookableRecord{
		RelationshipID:     rel.ID,
		ProviderID:         prov.ID,
		ProviderName:       prov.DisplayName(),
		ProviderLanguages:  prov.Languages(),
		AcceptsNewPatients: prov.AcceptsNewPatients,
		ProviderIsActive:   prov.IsActive,
		ProviderIsBookable: prov.IsBookable,
		PayerID:            pay.ID,
		PayerName:          pay.Name,
		Via:                ViaDirect,
		EffectiveDate:      rel.EffectiveDate,
		ExpirationDate:     rel.ExpirationDate,
		BookableFromDate:   rel.BookableFromDate,
	}

	if rel.NetworkStatus == StatusSupervised {
		rec.Via = ViaSupervised
		rec.SupervisionLevel = rel.SupervisionLevel
		if rel.SupervisionLevel != nil {
			rec.RequiresCoVisit = rel.SupervisionLevel.RequiresCoVisit()
		}

		attending := resolveAttending(rel, snap)
		if attending == nil {
			rec.UnsupervisedOrphan = true
			anomalies = append(anomalies, Anomaly{
				Kind:           AnomalyUnsupervisedOrphan,
				RelationshipID: rel.ID,
				ProviderID:     rel.ProviderID,
				PayerID:        rel.PayerID,
				Detail:         "supervised relationship has no resolvable attending provider",
			})
		} else {
			id := attending.ID
			name := attending.DisplayName()
			rec.AttendingProviderID = &id
			rec.AttendingName = &name
		}
	}

	return rec, anomalies, true
}

// resolveAttending returns the attending provider for a supervised
// relationship, or nil when the billing reference is missing, unknown, or
// points at an inactive provider.
func resolveAttending(rel *Relationship, snap *Snapshot) *provider.Provider {
	if rel.BillingProviderID == nil {
		return nil
	}
	attending, ok := snap.Providers[*rel.BillingProviderID]
	if !ok || !attending.IsActive {
		return nil
	}
	return attending
}

// GroupByAttending aggregates supervised records under their attending,
// answering "which trainees does Dr. X supervise for payer Y". Records
// without a resolved attending (direct or orphaned) are not grouped.
func GroupByAttending(records []BookableRecord) []AttendingGroup {
	byID := make(map[uuid.UUID]*AttendingGroup)
	for _, rec := range records {
		if rec.AttendingProviderID == nil {
			continue
		}
		g, ok := byID[*rec.AttendingProviderID]
		if !ok {
			g = &AttendingGroup{AttendingProviderID: *rec.AttendingProviderID}
			if rec.AttendingName != nil {
				g.AttendingName = *rec.AttendingName
			}
			byID[*rec.AttendingProviderID] = g
		}
		g.Records = append(g.Records, rec)
	}

	groups := make([]AttendingGroup, 0, len(byID))
	for _, g := range byID {
		sortRecords(g.Records)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].AttendingName != groups[j].AttendingName {
			return groups[i].AttendingName < groups[j].AttendingName
		}
		return groups[i].AttendingProviderID.String() < groups[j].AttendingProviderID.String()
	})
	return groups
}

// Output ordering is fixed so that re-running the pipeline on an unchanged
// snapshot yields identical output.
func sortRecords(records []BookableRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].ProviderName != records[j].ProviderName {
			return records[i].ProviderName < records[j].ProviderName
		}
		if records[i].PayerName != records[j].PayerName {
			return records[i].PayerName < records[j].PayerName
		}
		return records[i].RelationshipID.String() < records[j].RelationshipID.String()
	})
}

func sortAnomalies(anomalies []Anomaly) {
	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].Kind != anomalies[j].Kind {
			return anomalies[i].Kind < anomalies[j].Kind
		}
		return anomalies[i].RelationshipID.String() < anomalies[j].RelationshipID.String()
	})
}
