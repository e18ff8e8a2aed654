package mapper

import (
	"encoding/base64"
	"math/big"

	"ppv-marketplace/internal/domain/dto"
	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/file"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

func VideoToDTO(v entities.VideoRecord, gateway string) dto.VideoDTO {
	out := dto.VideoDTO{
		ID:            v.ID,
		Backend:       string(v.Backend),
		Contract:      v.Contract,
		Uploader:      v.Uploader,
		UploaderShort: file.ShortAddress(v.Uploader),
		Title:         v.DisplayTitle(),
		Description:   v.Description,
		ContentHash:   v.ContentHash,
		ThumbnailHash: v.ThumbnailHash,
		VideoURL:      file.GatewayURL(gateway, v.ContentHash),
		Price:         intString(v.Price),
		DisplayTime:   v.DisplayTimeSeconds,
		Active:        v.Active,
		TotalViews:    intString(v.TotalViews),
		TotalRevenue:  intString(v.TotalRevenue),
	}
	if v.ThumbnailHash != "" {
		out.ThumbnailURL = file.GatewayURL(gateway, v.ThumbnailHash)
	}
	return out
}

func VideoToListing(v entities.VideoRecord) entities.VideoListing {
	return entities.VideoListing{
		ID:            uuid.New(),
		Backend:       string(v.Backend),
		Contract:      v.Contract,
		ChainVideoID:  v.ID,
		Uploader:      v.Uploader,
		ContentHash:   v.ContentHash,
		ThumbnailHash: v.ThumbnailHash,
		Title:         v.Title,
		Description:   v.Description,
		Price:         intString(v.Price),
		DisplayTime:   v.DisplayTimeSeconds,
		Active:        v.Active,
		TotalViews:    intString(v.TotalViews),
		TotalRevenue:  intString(v.TotalRevenue),
	}
}

func ListingToVideo(l entities.VideoListing) entities.VideoRecord {
	return entities.VideoRecord{
		ID:                 l.ChainVideoID,
		Backend:            entities.Backend(l.Backend),
		Contract:           l.Contract,
		Uploader:           l.Uploader,
		ContentHash:        l.ContentHash,
		ThumbnailHash:      l.ThumbnailHash,
		Title:              l.Title,
		Description:        l.Description,
		Price:              ParseInt(l.Price),
		DisplayTimeSeconds: l.DisplayTime,
		Active:             l.Active,
		TotalViews:         ParseInt(l.TotalViews),
		TotalRevenue:       ParseInt(l.TotalRevenue),
	}
}

func PendingToDTO(t *entities.PendingTransaction, observed *big.Int) dto.TransactionStatusResponse {
	out := dto.TransactionStatusResponse{
		TransactionID: t.ID.String(),
		Kind:          t.Kind,
		Status:        t.Status,
		TxHash:        t.TxHash,
	}
	if observed != nil {
		out.Observed = observed.String()
	}
	return out
}

// PreparedToDTO renders a payload the way each chain's wallets accept it:
// hex calldata on EVM, a base64 BOC message body on TON.
func PreparedToDTO(t *entities.PendingTransaction, p *entities.CallPayload, contentHash string) dto.PreparedTxResponse {
	payload := hexutil.Encode(p.Data)
	if p.Backend == entities.BackendTON {
		payload = base64.StdEncoding.EncodeToString(p.Data)
	}
	return dto.PreparedTxResponse{
		TransactionID: t.ID.String(),
		Kind:          t.Kind,
		Backend:       t.Backend,
		To:            p.Contract,
		Value:         intString(p.Value),
		Payload:       payload,
		ValidUntil:    p.ValidUntil,
		ContentHash:   contentHash,
	}
}

func intString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// ParseInt reads a stored decimal integer; malformed or empty input is zero.
func ParseInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}
