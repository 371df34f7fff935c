package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/txn"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Admit creates the (visitorID, groupID) registration if check approves.
//
// On a replica set the count and insert run in one transaction that first
// bumps the group's admit_seq, so two admissions into the same group write
// the same document and one of them fails with a write conflict
// (store.ErrConflict). Standalone servers fall back to claimThenVerify.
func (s *Store) Admit(ctx context.Context, visitorID, groupID int64, check store.AdmitCheck) (models.Registration, error) {
	// Allocated outside the transaction so unrelated admissions do not
	// conflict on the shared sequence. Gaps are harmless.
	id, err := s.nextID(ctx, RegistrationsColl)
	if err != nil {
		return models.Registration{}, err
	}
	now := s.now()
	reg := models.Registration{ID: id, VisitorID: visitorID, GroupID: groupID, CreatedAt: now, UpdatedAt: now}

	if s.txMode.Load() != txUnsupported {
		err := s.admitTx(ctx, reg, check)
		if err == nil || !txn.IsNotSupported(err) || errors.Is(err, errCheck) {
			if err == nil {
				s.txMode.Store(txSupported)
			}
			return reg, unwrapCheck(err)
		}
		s.log.Warn("transactions unavailable, using claim-then-verify admission", zap.Error(err))
		s.txMode.Store(txUnsupported)
	}
	return reg, s.claimThenVerify(ctx, reg, check)
}

// errCheck marks an error produced by the caller's AdmitCheck so it is
// never mistaken for a driver error.
var errCheck = errors.New("admit check")

type checkError struct{ err error }

func (e checkError) Error() string   { return e.err.Error() }
func (e checkError) Unwrap() []error { return []error{errCheck, e.err} }

func unwrapCheck(err error) error {
	var ce checkError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}

func (s *Store) admitTx(ctx context.Context, reg models.Registration, check store.AdmitCheck) error {
	err := txn.Run(ctx, s.client, func(sc mongo.SessionContext) error {
		var g models.Group
		err := s.groups.FindOneAndUpdate(sc,
			bson.M{"_id": reg.GroupID},
			bson.M{"$inc": bson.M{"admit_seq": int64(1)}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&g)
		if err != nil {
			return err
		}

		occ, err := s.occupancy(sc, bson.M{"group_id": reg.GroupID})
		if err != nil {
			return err
		}
		if err := check(g, occ[reg.GroupID]); err != nil {
			return checkError{err}
		}

		_, err = s.regs.InsertOne(sc, reg)
		return err
	})

	switch {
	case err == nil, errors.Is(err, errCheck):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case txn.IsWriteConflict(err):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	case txn.IsNotSupported(err):
		return err
	}
	return mapErr(err)
}

// claimThenVerify admits without transactions. The registration is
// inserted first (the unique index rejects a second claim for the same
// pair), then the group's other registrations are recounted. If they no
// longer leave room, the claim is withdrawn.
//
// For any set of surviving claims, the last one to recount saw all the
// others and still fit, so the group is never over-filled. Racing claims
// may both withdraw; the second one reports store.ErrConflict so the
// caller can retry.
func (s *Store) claimThenVerify(ctx context.Context, reg models.Registration, check store.AdmitCheck) error {
	g, err := s.GetGroup(ctx, reg.GroupID)
	if err != nil {
		return err
	}
	before, err := s.occupancy(ctx, bson.M{"group_id": reg.GroupID})
	if err != nil {
		return err
	}
	if err := check(g, before[reg.GroupID]); err != nil {
		return err
	}

	if _, err := s.regs.InsertOne(ctx, reg); err != nil {
		return mapErr(err)
	}

	others, err := s.occupancy(ctx, bson.M{"group_id": reg.GroupID, "_id": bson.M{"$ne": reg.ID}})
	if err == nil {
		if err = check(g, others[reg.GroupID]); err == nil {
			return nil
		}
		err = fmt.Errorf("%w: group %d filled during admission", store.ErrConflict, reg.GroupID)
	}

	if _, delErr := s.regs.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": reg.ID}); delErr != nil {
		s.log.Error("failed to withdraw registration claim",
			zap.Int64("registration_id", reg.ID),
			zap.Int64("group_id", reg.GroupID),
			zap.Error(delErr))
	}
	return err
}
