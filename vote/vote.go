// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vote - contested resource voting
//
// when two identities claim the same value under a contested unique
// index the value is not handed out first come first served; a vote
// poll opens and masternodes decide who receives it, or lock it away
package vote

import (
	"bytes"
	"sort"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/util"
)

// ChoiceKind - what a resource vote is cast towards
type ChoiceKind uint8

const (
	TowardsIdentity ChoiceKind = iota
	Abstain
	Lock
	invalidChoiceKind
)

// ResourceVoteChoice - one cast choice
type ResourceVoteChoice struct {
	Kind     ChoiceKind
	Identity identifier.Identifier // TowardsIdentity only
}

// Valid - range and payload consistency check
func (c *ResourceVoteChoice) Valid() bool {
	if c.Kind >= invalidChoiceKind {
		return false
	}
	if TowardsIdentity != c.Kind && !c.Identity.IsZero() {
		return false
	}
	if TowardsIdentity == c.Kind && c.Identity.IsZero() {
		return false
	}
	return true
}

// ContestedDocumentResourceVotePoll - one open contest
type ContestedDocumentResourceVotePoll struct {
	ContractId       identifier.Identifier
	DocumentTypeName string
	IndexName        string
	IndexValues      [][]byte

	// unix millis after which no further contenders may join and
	// after the vote extension no further votes count
	EndsAt uint64
}

// Id - deterministic identifier of the poll
func (p *ContestedDocumentResourceVotePoll) Id() identifier.Identifier {
	components := [][]byte{
		p.ContractId[:],
		[]byte(p.DocumentTypeName),
		[]byte(p.IndexName),
	}
	components = append(components, p.IndexValues...)
	return identifier.NewDerived(components...)
}

// Joinable - whether a new contender may still enter
func (p *ContestedDocumentResourceVotePoll) Joinable(now uint64) bool {
	return now < p.EndsAt
}

// Vote - one masternode vote inside a poll
type Vote struct {
	PollId identifier.Identifier
	Voter  identifier.Identifier // masternode pro-tx-hash identity
	Choice ResourceVoteChoice
}

// Tally - current per choice vote strength of a poll
type Tally struct {
	TowardsIdentity map[identifier.Identifier]uint32
	Abstain         uint32
	Lock            uint32
}

// Count - tally votes, the last vote of each voter is the one counted
func Count(votes []Vote) *Tally {
	latest := make(map[identifier.Identifier]ResourceVoteChoice, len(votes))
	for _, v := range votes {
		latest[v.Voter] = v.Choice
	}

	tally := &Tally{
		TowardsIdentity: make(map[identifier.Identifier]uint32),
	}
	for _, choice := range latest {
		switch choice.Kind {
		case TowardsIdentity:
			tally.TowardsIdentity[choice.Identity] += 1
		case Abstain:
			tally.Abstain += 1
		case Lock:
			tally.Lock += 1
		}
	}
	return tally
}

// Winner - the identity with the most votes
//
// locked is true when lock votes beat every identity; ok is false on a
// tie between leading identities or when nothing was decided
func (t *Tally) Winner() (winner identifier.Identifier, locked bool, ok bool) {
	best := uint32(0)
	tied := false

	for _, id := range sortedTallyIdentities(t.TowardsIdentity) {
		count := t.TowardsIdentity[id]
		switch {
		case count > best:
			best = count
			winner = id
			tied = false
		case count == best && 0 != best:
			tied = true
		}
	}

	if t.Lock > best {
		return identifier.Identifier{}, true, true
	}
	if 0 == best || tied || t.Lock == best {
		return identifier.Identifier{}, false, false
	}
	return winner, false, true
}

func sortedTallyIdentities(m map[identifier.Identifier]uint32) []identifier.Identifier {
	ids := make([]identifier.Identifier, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Pack - canonical bytes of a poll record
func (p *ContestedDocumentResourceVotePoll) Pack() []byte {
	message := util.AppendFixed(nil, p.ContractId[:])
	message = util.AppendString(message, p.DocumentTypeName)
	message = util.AppendString(message, p.IndexName)
	message = util.AppendUint64(message, uint64(len(p.IndexValues)))
	for _, value := range p.IndexValues {
		message = util.AppendBytes(message, value)
	}
	message = util.AppendUint64(message, p.EndsAt)
	return message
}

// UnpackPoll - decode a stored poll record
func UnpackPoll(buffer []byte) (*ContestedDocumentResourceVotePoll, error) {
	idBytes, rest, ok := util.NextFixed(buffer, identifier.Length)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	contractId, err := identifier.FromBytes(idBytes)
	if nil != err {
		return nil, fault.CorruptedSerialization
	}
	documentTypeName, rest, ok := util.NextString(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	indexName, rest, ok := util.NextString(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	valueCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	var values [][]byte
	for i := uint64(0); i < valueCount; i += 1 {
		var value []byte
		value, rest, ok = util.NextBytes(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		values = append(values, value)
	}
	endsAt, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	if 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}
	return &ContestedDocumentResourceVotePoll{
		ContractId:       contractId,
		DocumentTypeName: documentTypeName,
		IndexName:        indexName,
		IndexValues:      values,
		EndsAt:           endsAt,
	}, nil
}

// Pack - canonical bytes of one vote record
func (v *Vote) Pack() []byte {
	message := util.AppendFixed(nil, v.PollId[:])
	message = util.AppendFixed(message, v.Voter[:])
	message = util.AppendUint64(message, uint64(v.Choice.Kind))
	message = util.AppendFixed(message, v.Choice.Identity[:])
	return message
}

// UnpackVote - decode a stored vote record
func UnpackVote(buffer []byte) (*Vote, error) {
	pollBytes, rest, ok := util.NextFixed(buffer, identifier.Length)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	pollId, err := identifier.FromBytes(pollBytes)
	if nil != err {
		return nil, fault.CorruptedSerialization
	}
	voterBytes, rest, ok := util.NextFixed(rest, identifier.Length)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	voter, err := identifier.FromBytes(voterBytes)
	if nil != err {
		return nil, fault.CorruptedSerialization
	}
	kind, rest, ok := util.NextUint64(rest)
	if !ok || ChoiceKind(kind) >= invalidChoiceKind {
		return nil, fault.CorruptedSerialization
	}
	towardsBytes, rest, ok := util.NextFixed(rest, identifier.Length)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	towards, err := identifier.FromBytes(towardsBytes)
	if nil != err {
		return nil, fault.CorruptedSerialization
	}
	if 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}
	return &Vote{
		PollId: pollId,
		Voter:  voter,
		Choice: ResourceVoteChoice{
			Kind:     ChoiceKind(kind),
			Identity: towards,
		},
	}, nil
}
