package usecases

import (
	"context"
	"fmt"
	"math/big"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"

	"github.com/ethereum/go-ethereum/crypto"
)

// effect is how a confirmed transaction of one kind shows up on chain.
// baseline, when set, reads the value captured before submission;
// otherwise observe is used for both.
type effect struct {
	describe string
	baseline Observation
	observe  Observation
	pred     Predicate
}

func (e *effect) readBaseline(ctx context.Context) (*big.Int, error) {
	if e.baseline != nil {
		return e.baseline(ctx)
	}
	return e.observe(ctx)
}

// metadataFingerprint folds title, description and price into one number
// so a metadata update can be observed like any other counter.
func metadataFingerprint(title, description string, price *big.Int) *big.Int {
	p := "0"
	if price != nil {
		p = price.String()
	}
	sum := crypto.Keccak256([]byte(title), []byte{0}, []byte(description), []byte{0}, []byte(p))
	return new(big.Int).SetBytes(sum)
}

func effectFor(client repositories.ChainClient, kind entities.Kind, videoID uint64, sender string, target *big.Int) (*effect, error) {
	switch kind {
	case entities.KindPayToView:
		if sender == "" {
			return nil, fmt.Errorf("purchase effect needs the paying sender")
		}
		views := func(ctx context.Context) (*big.Int, error) {
			return client.GetTotalViewers(ctx, videoID)
		}
		return &effect{
			describe: fmt.Sprintf("hasPurchased(%d, %s) && getTotalViewers(%d) > baseline", videoID, sender, videoID),
			baseline: views,
			// Other viewers' purchases move the counter too, so it only
			// counts once this sender's purchase is on chain.
			observe: func(ctx context.Context) (*big.Int, error) {
				paid, err := client.HasPurchased(ctx, videoID, sender)
				if err != nil {
					return nil, err
				}
				if !paid {
					return new(big.Int), nil
				}
				return views(ctx)
			},
			pred: Increased(),
		}, nil
	case entities.KindRegisterVideo:
		return &effect{
			describe: "videoCount > baseline",
			observe:  client.VideoCount,
			pred:     Increased(),
		}, nil
	case entities.KindWithdraw:
		return &effect{
			describe: fmt.Sprintf("withdrawable(%d) < baseline", videoID),
			observe: func(ctx context.Context) (*big.Int, error) {
				return client.WithdrawableBalance(ctx, videoID, sender)
			},
			pred: Decreased(),
		}, nil
	case entities.KindUpdateMetadata:
		if target == nil {
			return nil, fmt.Errorf("update effect needs a target")
		}
		return &effect{
			describe: fmt.Sprintf("metadata(%d) == requested", videoID),
			observe: func(ctx context.Context) (*big.Int, error) {
				v, err := client.GetVideoInfo(ctx, videoID)
				if err != nil {
					return nil, err
				}
				return metadataFingerprint(v.Title, v.Description, v.Price), nil
			},
			pred: Reached(target),
		}, nil
	case entities.KindToggleActive:
		return &effect{
			describe: fmt.Sprintf("active(%d) flipped", videoID),
			observe: func(ctx context.Context) (*big.Int, error) {
				v, err := client.GetVideoInfo(ctx, videoID)
				if err != nil {
					return nil, err
				}
				if v.Active {
					return big.NewInt(1), nil
				}
				return big.NewInt(0), nil
			},
			pred: Changed(),
		}, nil
	}
	return nil, fmt.Errorf("no observable effect for kind %q", kind)
}
