package library

import (
	"context"
	"fmt"

	"github.com/shmel1k/rftarantool/internal/keyword"
	"github.com/shmel1k/rftarantool/internal/tarantool"
)

const (
	kwConnect      = "Connect To Tarantool"
	kwSwitch       = "Switch Tarantool Connection"
	kwCloseAll     = "Close All Tarantool Connections"
	kwSelect       = "Select"
	kwInsert       = "Insert"
	kwCreateOp     = "Create Operation"
	kwUpdate       = "Update"
	kwDelete       = "Delete"
	kwargIterator  = "iterator"
	kwargIndex     = "index"
	tagConnection  = "connection"
	tagData        = "data"
	docKeyTypeHint = "_key_type_: type of the key: STR, NUM, NUM64 or INT. When omitted the key is sent as is;\n"
)

func (l *Library) keywords() []keyword.Keyword {
	return []keyword.Keyword{
		{
			Name: kwConnect,
			Doc: "Connection to Tarantool DB.\n\n" +
				"*Args:*\n" +
				"_host_ - host for db connection;\n" +
				"_port_ - port for db connection;\n" +
				"_user_ - username for db connection;\n" +
				"_password_ - password for db connection;\n" +
				"_alias_ - connection alias, used for switching between open connections;\n\n" +
				"*Returns:*\n" +
				"Returns ID of the new connection. The connection is set as active.\n\n" +
				"*Example:*\n" +
				"| Connect To Tarantool | 127.0.0.1 | 3301 |",
			Tags: []string{tagConnection},
			Params: []keyword.Param{
				keyword.Required("host"),
				keyword.Required("port"),
				keyword.Optional("user", nil),
				keyword.Optional("password", nil),
				keyword.Optional("alias", nil),
			},
			Run: l.runConnect,
		},
		{
			Name: kwSwitch,
			Doc: "Switch to another existing Tarantool connection using its index or alias.\n\n" +
				"*Args:*\n" +
				"_index_or_alias_ - connection index or alias assigned to connection;\n\n" +
				"*Returns:*\n" +
				"Index of the previous connection.",
			Tags:   []string{tagConnection},
			Params: []keyword.Param{keyword.Required("index_or_alias")},
			Run:    l.runSwitch,
		},
		{
			Name: kwCloseAll,
			Doc: "Close all Tarantool connections that were opened.\n" +
				"After calling this keyword connection index returned by opening new connections starts from 1.",
			Tags: []string{tagConnection},
			Run:  l.runCloseAll,
		},
		{
			Name: kwSelect,
			Doc: "Select and retrieve data from the database.\n\n" +
				"*Args:*\n" +
				"_space_name_: space name or id;\n" +
				"_key_: values to search over the index;\n" +
				"_offset_: offset in the resulting tuple set;\n" +
				"_limit_: limits the total number of returned tuples. Default is max of unsigned int32;\n" +
				"_index_: index name or id. Default is 0 which means that the primary index will be used;\n" +
				docKeyTypeHint +
				"_iterator_: iterator type, EQ by default;\n\n" +
				"*Returns:*\n" +
				"List of tuples.\n\n" +
				"*Example:*\n" +
				"| ${data_from_trnt}= | Select | space_name=some_space_name | key=0 | key_type=NUM |\n" +
				"| Set Test Variable | ${key} | ${data_from_trnt[0][0]} |\n" +
				"| Set Test Variable | ${data_from_field} | ${data_from_trnt[0][1]} |",
			Tags: []string{tagData},
			Params: []keyword.Param{
				keyword.Required("space_name"),
				keyword.Required("key"),
				keyword.Optional("offset", 0),
				keyword.Optional("limit", tarantool.DefaultLimit),
				keyword.Optional("index", 0),
				keyword.Optional("key_type", nil),
			},
			Kwargs: true,
			Run:    l.runSelect,
		},
		{
			Name: kwInsert,
			Doc: "Execute insert request.\n\n" +
				"*Args:*\n" +
				"_space_name_: space name or id to insert a record;\n" +
				"_values_: record to be inserted;\n\n" +
				"*Returns:*\n" +
				"List with the inserted tuple.\n\n" +
				"*Example:*\n" +
				"| ${data_to_insert}= | Create List | 1 | ${data} |\n" +
				"| ${response}= | Insert | space_name=${SPACE_NAME} | values=${data_to_insert} |",
			Tags: []string{tagData},
			Params: []keyword.Param{
				keyword.Required("space_name"),
				keyword.Required("values"),
			},
			Run: l.runInsert,
		},
		{
			Name: kwCreateOp,
			Doc: "Check and prepare operation tuple.\n\n" +
				"*Allowed operations:*\n" +
				"'+' addition, '-' subtraction, '&' bitwise AND, '|' bitwise OR, '^' bitwise XOR,\n" +
				"':' string splice (provide offset, count and value), '!' insertion,\n" +
				"'=' assignment, '#' deletion (provide count of fields to delete).\n\n" +
				"*Args:*\n" +
				"_operation_: operation sign;\n" +
				"_field_: field number to apply operation to;\n" +
				"_arg_: argument or list of arguments;\n\n" +
				"*Example:*\n" +
				"| ${operation}= | Create Operation | operation== | field=${1} | arg=NEW DATA |",
			Tags: []string{tagData},
			Params: []keyword.Param{
				keyword.Required("operation"),
				keyword.Required("field"),
				keyword.Required("arg"),
			},
			Run: l.runCreateOperation,
		},
		{
			Name: kwUpdate,
			Doc: "Execute update request. Accepts both an operation and a list of operations.\n\n" +
				"*Args:*\n" +
				"_space_name_: space name or id;\n" +
				"_key_: key that identifies a record;\n" +
				"_op_list_: operation or list of operations made with Create Operation;\n" +
				docKeyTypeHint +
				"_index_: index name or id, primary by default;\n\n" +
				"*Example:*\n" +
				"| ${operation}= | Create Operation | operation== | field=${1} | arg=NEW DATA |\n" +
				"| Update | space_name=${SPACE_NAME} | key=${key} | op_list=${operation} |",
			Tags: []string{tagData},
			Params: []keyword.Param{
				keyword.Required("space_name"),
				keyword.Required("key"),
				keyword.Required("op_list"),
				keyword.Optional("key_type", nil),
			},
			Kwargs: true,
			Run:    l.runUpdate,
		},
		{
			Name: kwDelete,
			Doc: "Execute delete request.\n\n" +
				"*Args:*\n" +
				"_space_name_: space name or id;\n" +
				"_key_: key that identifies a record;\n" +
				docKeyTypeHint +
				"_index_: index name or id, primary by default;\n\n" +
				"*Example:*\n" +
				"| Delete | space_name=${SPACE_NAME} | key=${key} |",
			Tags: []string{tagData},
			Params: []keyword.Param{
				keyword.Required("space_name"),
				keyword.Required("key"),
				keyword.Optional("key_type", nil),
			},
			Kwargs: true,
			Run:    l.runDelete,
		},
	}
}

func (l *Library) runConnect(ctx context.Context, args keyword.Args) (interface{}, error) {
	var host, port, user, password, alias string
	for name, dst := range map[string]*string{
		"host":     &host,
		"port":     &port,
		"user":     &user,
		"password": &password,
		"alias":    &alias,
	} {
		v, err := args.String(name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	return l.ConnectToTarantool(ctx, host, port, user, password, alias)
}

func (l *Library) runSwitch(_ context.Context, args keyword.Args) (interface{}, error) {
	indexOrAlias, err := args.String("index_or_alias")
	if err != nil {
		return nil, err
	}

	prev, err := l.SwitchTarantoolConnection(indexOrAlias)
	if err != nil {
		return nil, err
	}
	if prev == 0 {
		return nil, nil
	}

	return prev, nil
}

func (l *Library) runCloseAll(_ context.Context, _ keyword.Args) (interface{}, error) {
	return nil, l.CloseAllTarantoolConnections()
}

func (l *Library) runSelect(ctx context.Context, args keyword.Args) (interface{}, error) {
	space, err := args.String("space_name")
	if err != nil {
		return nil, err
	}
	offset, err := args.Uint32("offset")
	if err != nil {
		return nil, err
	}
	limit, err := args.Uint32("limit")
	if err != nil {
		return nil, err
	}
	index, err := args.String("index")
	if err != nil {
		return nil, err
	}
	keyType, err := args.String("key_type")
	if err != nil {
		return nil, err
	}
	iterator, err := iteratorKwarg(args)
	if err != nil {
		return nil, err
	}

	return l.Select(ctx, tarantool.SelectRequest{
		Space:    space,
		Index:    index,
		Key:      args.Value("key"),
		Offset:   offset,
		Limit:    limit,
		Iterator: iterator,
	}, keyType)
}

func (l *Library) runInsert(ctx context.Context, args keyword.Args) (interface{}, error) {
	space, err := args.String("space_name")
	if err != nil {
		return nil, err
	}

	return l.Insert(ctx, space, args.List("values"))
}

func (l *Library) runCreateOperation(_ context.Context, args keyword.Args) (interface{}, error) {
	op, err := args.String("operation")
	if err != nil {
		return nil, err
	}

	return tarantool.NewOperation(op, args.Value("field"), args.Value("arg"))
}

func (l *Library) runUpdate(ctx context.Context, args keyword.Args) (interface{}, error) {
	space, err := args.String("space_name")
	if err != nil {
		return nil, err
	}
	keyType, err := args.String("key_type")
	if err != nil {
		return nil, err
	}
	index, err := indexKwarg(args)
	if err != nil {
		return nil, err
	}
	ops, err := tarantool.ParseOperations(args.Value("op_list"))
	if err != nil {
		return nil, err
	}

	return l.Update(ctx, tarantool.UpdateRequest{
		Space:      space,
		Index:      index,
		Key:        args.Value("key"),
		Operations: ops,
	}, keyType)
}

func (l *Library) runDelete(ctx context.Context, args keyword.Args) (interface{}, error) {
	space, err := args.String("space_name")
	if err != nil {
		return nil, err
	}
	keyType, err := args.String("key_type")
	if err != nil {
		return nil, err
	}
	index, err := indexKwarg(args)
	if err != nil {
		return nil, err
	}

	return l.Delete(ctx, tarantool.DeleteRequest{
		Space: space,
		Index: index,
		Key:   args.Value("key"),
	}, keyType)
}

func iteratorKwarg(args keyword.Args) (tarantool.Iterator, error) {
	if err := onlyKwargs(args, kwargIterator); err != nil {
		return 0, err
	}

	v, ok := args.Kwarg(kwargIterator)
	if !ok || v == nil {
		return tarantool.IterEq, nil
	}

	return tarantool.ParseIterator(fmt.Sprint(v))
}

func indexKwarg(args keyword.Args) (string, error) {
	if err := onlyKwargs(args, kwargIndex); err != nil {
		return "", err
	}

	v, ok := args.Kwarg(kwargIndex)
	if !ok || v == nil {
		return "", nil
	}

	return fmt.Sprint(v), nil
}

func onlyKwargs(args keyword.Args, allowed ...string) error {
	for _, name := range args.Kwargs() {
		known := false
		for _, a := range allowed {
			if name == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: unsupported named argument '%s'", keyword.ErrInvalidArguments, name)
		}
	}

	return nil
}
