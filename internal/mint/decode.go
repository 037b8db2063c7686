package mint

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/constants"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
)

// ErrShortAccount means the account is too small to be an SPL mint.
var ErrShortAccount = errors.New("mint account data too short")

// offsetSupply follows the 36-byte COption<Pubkey> mint authority.
const offsetSupply = 36

// DecodeMint reads authority flags, supply and decimals from raw SPL mint data.
func DecodeMint(data []byte) (models.MintState, error) {
	if len(data) < constants.MinMintAccountSize {
		return models.DefaultMintState(), fmt.Errorf("%w: %d bytes", ErrShortAccount, len(data))
	}

	dec := bin.NewBinDecoder(data)

	mintTag, err := dec.ReadUint8()
	if err != nil {
		return models.DefaultMintState(), fmt.Errorf("read mint authority: %w", err)
	}
	if _, err := dec.ReadNBytes(offsetSupply - 1); err != nil {
		return models.DefaultMintState(), fmt.Errorf("skip mint authority: %w", err)
	}

	supply, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return models.DefaultMintState(), fmt.Errorf("read supply: %w", err)
	}
	decimals, err := dec.ReadUint8()
	if err != nil {
		return models.DefaultMintState(), fmt.Errorf("read decimals: %w", err)
	}
	if _, err := dec.ReadUint8(); err != nil { // is_initialized
		return models.DefaultMintState(), fmt.Errorf("read initialized flag: %w", err)
	}
	freezeTag, err := dec.ReadUint8()
	if err != nil {
		return models.DefaultMintState(), fmt.Errorf("read freeze authority: %w", err)
	}

	return models.MintState{
		MintAuthorityActive:   mintTag == 1,
		FreezeAuthorityActive: freezeTag == 1,
		Decimals:              int(decimals),
		Supply:                supply,
	}, nil
}
